// Package handlers provides the HTTP handlers of the lookup API.
package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/kodepos-id/kodepos/internal/server/cache"
	"github.com/kodepos-id/kodepos/internal/server/index"
)

// Handlers serves lookups from one dataset index.
type Handlers struct {
	index     *index.Index
	cache     *cache.Cache
	logger    *zerolog.Logger
	version   string
	startTime time.Time
}

// New creates a new Handlers instance.
func New(idx *index.Index, c *cache.Cache, logger *zerolog.Logger, version string) *Handlers {
	return &Handlers{
		index:     idx,
		cache:     c,
		logger:    logger,
		version:   version,
		startTime: time.Now(),
	}
}
