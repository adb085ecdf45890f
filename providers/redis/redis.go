// Package redis provides a redis client as the "redis.client" component.
package redis

import (
	"context"
	"encoding/json"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/errors"
)

const (
	Name      = "redis"
	ClientKey = "redis.client"
)

var (
	ErrorInvalidURL = errors.Error{Key: "ERROR.REDIS_INVALID_URL"}
	ErrorConnection = errors.Error{Key: "ERROR.REDIS_CONNECTION"}
)

type Options struct {
	// URL is redis://[user:password@]host:port/db
	URL    string
	Logger *logrus.Entry
}

type Provider struct {
	options Options
	parsed  *backend.Options
	client  *backend.Client
}

func New(options Options) *Provider {
	if options.Logger == nil {
		options.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Provider{options: options}
}

func (p *Provider) Name() string { return Name }

// Client is nil until the provider started
func (p *Provider) Client() *backend.Client { return p.client }

func (p *Provider) Prepare(container.Target) error {
	parsed, err := backend.ParseURL(p.options.URL)
	if err != nil {
		return errors.Wrap(ErrorInvalidURL, err)
	}

	p.parsed = parsed
	return nil
}

func (p *Provider) Start(t container.Target) error {
	if p.parsed == nil {
		if err := p.Prepare(t); err != nil {
			return err
		}
	}

	client := backend.NewClient(p.parsed)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return errors.Wrap(ErrorConnection, err)
	}

	p.client = client
	p.options.Logger.WithField("addr", p.parsed.Addr).Info("redis connection established")

	return t.Register(ClientKey, backend.UniversalClient(client))
}

func (p *Provider) Stop(container.Target) error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Publish sends payload json encoded on channel
func Publish(ctx context.Context, client backend.UniversalClient, channel string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapGeneric(err)
	}
	return client.Publish(ctx, channel, b).Err()
}
