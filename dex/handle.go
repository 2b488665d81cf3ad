package dex

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teranos/porydex/store"
)

// Handle holds the currently published Dex. A rebuild is swapped in with a
// single atomic store, so readers see either the old catalog or the new one.
type Handle struct {
	current atomic.Pointer[Dex]
}

// Current returns the published catalog, or nil before the first publish.
func (h *Handle) Current() *Dex {
	return h.current.Load()
}

// Publish makes d the current catalog.
func (h *Handle) Publish(d *Dex) {
	h.current.Store(d)
}

// Refresh rebuilds the catalog from st and publishes it. On error the
// previously published catalog stays current.
func (h *Handle) Refresh(ctx context.Context, st *store.Store, log *zap.SugaredLogger) (*Dex, error) {
	d, err := Build(ctx, st, log)
	if err != nil {
		return nil, err
	}
	h.Publish(d)
	return d, nil
}
