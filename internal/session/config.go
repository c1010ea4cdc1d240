package session

import "time"

// Config defines session loop defaults.
type Config struct {
	// QueueSize bounds socket events waiting for the loop.
	QueueSize      int
	ConnectOnStart bool
	ConnectTimeout time.Duration
	// LogLimit caps the message log. Zero keeps everything.
	LogLimit int
}

func DefaultConfig() Config {
	return Config{
		QueueSize:      64,
		ConnectOnStart: true,
		ConnectTimeout: 10 * time.Second,
		LogLimit:       10000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	return c
}
