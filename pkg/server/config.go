// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
)

// Config holds server configuration.
type Config struct {
	// Server identity, reported in logs.
	Name    string
	Version string

	// Additional handlers mounted behind the middleware chain.
	Handlers map[string]http.HandlerFunc

	Address string
	Port    int

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Option mutates a Config.
type Option func(*Config)

// WithName sets the server name.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithVersion sets the reported version.
func WithVersion(version string) Option {
	return func(c *Config) { c.Version = version }
}

// WithPort sets the listening port.
func WithPort(port int) Option {
	return func(c *Config) { c.Port = port }
}

// WithRateLimit sets the token bucket for non-probe endpoints.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Config) {
		c.RateLimit = limit
		c.RateLimitBurst = burst
	}
}

// WithHandler mounts additional handlers.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(c *Config) {
		if c.Handlers == nil {
			c.Handlers = map[string]http.HandlerFunc{}
		}
		for path, h := range handlers {
			c.Handlers[path] = h
		}
	}
}

// NewConfig returns defaults with opts applied.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Name:            "server",
		Version:         "undefined",
		Port:            9090,
		RateLimit:       20,
		RateLimitBurst:  40,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
