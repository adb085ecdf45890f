package hanami

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/config"
	"github.com/slimloans/hanami/env"
)

// configureLogger applies the logger configuration: json outside of
// development and test, output discarded in test unless a stream is set
func configureLogger(logger *logrus.Logger, cfg *config.Logger, e string) error {
	level, err := logrus.ParseLevel(cfg.Level.Get())
	if err != nil {
		return config.ErrorInvalidConfig.Errorf("logger.level: %v", err)
	}
	logger.SetLevel(level)

	switch format := cfg.FormatFor(e); format {
	case config.LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case config.LogFormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return config.ErrorInvalidConfig.Errorf("logger.format: unknown format %q", format)
	}

	logger.SetOutput(loggerStream(cfg, e))
	return nil
}

func loggerStream(cfg *config.Logger, e string) io.Writer {
	if stream := cfg.Stream.Get(); stream != nil {
		return stream
	}

	if e == env.Test {
		return io.Discard
	}
	return os.Stdout
}
