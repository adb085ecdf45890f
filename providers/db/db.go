// Package db provides the gorm connection of an application or slice as the
// "db.gateway" component.
package db

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	Name       = "db"
	GatewayKey = "db.gateway"
)

var (
	ErrorUnsupportedURL = errors.Error{Key: "ERROR.DB_UNSUPPORTED_URL"}
	ErrorConnection     = errors.Error{Key: "ERROR.DB_CONNECTION"}
)

type Options struct {
	// URL is sqlite://path, sqlite://:memory: or postgres://...
	URL      string
	LogLevel string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	Logger *logrus.Entry
}

type Provider struct {
	options   Options
	dialector gorm.Dialector
	db        *gorm.DB
}

func New(options Options) *Provider {
	if options.Logger == nil {
		options.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Provider{options: options}
}

func (p *Provider) Name() string { return Name }

// DB is nil until the provider started
func (p *Provider) DB() *gorm.DB { return p.db }

// Prepare checks the url and picks the driver
func (p *Provider) Prepare(container.Target) error {
	dialector, err := Dialector(p.options.URL)
	if err != nil {
		return err
	}

	p.dialector = dialector
	return nil
}

// Start connects, pings and registers the gateway
func (p *Provider) Start(t container.Target) error {
	if p.dialector == nil {
		if err := p.Prepare(t); err != nil {
			return err
		}
	}

	entry := p.options.Logger.WithField("driver", p.dialector.Name())

	db, err := gorm.Open(p.dialector, &gorm.Config{Logger: NewLogger(entry, p.options.LogLevel)})
	if err != nil {
		return errors.Wrap(ErrorConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(ErrorConnection, err)
	}

	maxOpen := p.options.MaxOpenConns
	if maxOpen == 0 && isMemory(p.options.URL) {
		// every connection would open its own database
		maxOpen = 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(p.options.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(p.options.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return errors.Wrap(ErrorConnection, err)
	}

	p.db = db
	entry.Info("database connection established")

	return t.Register(GatewayKey, db)
}

func (p *Provider) Stop(container.Target) error {
	if p.db == nil {
		return nil
	}

	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dialector picks the gorm driver of url
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil

	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "sqlite3://"):
		path := url[strings.Index(url, "://")+3:]
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	}

	return nil, ErrorUnsupportedURL.Errorf("unsupported database url %q", url)
}

func isMemory(url string) bool {
	return strings.HasSuffix(url, "://") || strings.Contains(url, ":memory:")
}
