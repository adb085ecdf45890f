package router

import "time"

// Config is the base router configuration
type Config struct {
	// BaseURL prefixes paths built by URL
	BaseURL string

	// Timeout cancels request contexts after the duration, 0 disables it
	Timeout time.Duration

	// StripSlashes routes "/books/" as "/books"
	StripSlashes bool
}

func DefaultConfig() Config {
	return Config{BaseURL: "http://0.0.0.0:2300"}
}
