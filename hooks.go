package kodepos

import (
	"sync"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/registry"
	"github.com/kodepos-id/kodepos/pkg/sources"
)

// Hook function types for build events
type (
	// RegistryLoadedHook is called once the registry snapshot is loaded
	RegistryLoadedHook func(reg *registry.Registry)

	// SourceLoadedHook is called for every source mapping loaded
	SourceLoadedHook func(id sources.ID, m *sources.Mapping)

	// ReconciledHook is called when reconciliation completes
	ReconciledHook func(result *reconcile.Result)

	// ArtifactWrittenHook is called for every output file written
	ArtifactWrittenHook func(a codec.Artifact)
)

// hooks manages build event callbacks
type hooks struct {
	mu               sync.RWMutex
	onRegistryLoaded []RegistryLoadedHook
	onSourceLoaded   []SourceLoadedHook
	onReconciled     []ReconciledHook
	onArtifact       []ArtifactWrittenHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnRegistryLoaded registers a callback for when the registry is loaded
func (h *hooks) OnRegistryLoaded(fn RegistryLoadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRegistryLoaded = append(h.onRegistryLoaded, fn)
}

// OnSourceLoaded registers a callback for when a source mapping is loaded
func (h *hooks) OnSourceLoaded(fn SourceLoadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSourceLoaded = append(h.onSourceLoaded, fn)
}

// OnReconciled registers a callback for when reconciliation completes
func (h *hooks) OnReconciled(fn ReconciledHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReconciled = append(h.onReconciled, fn)
}

// OnArtifactWritten registers a callback for every output file written
func (h *hooks) OnArtifactWritten(fn ArtifactWrittenHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onArtifact = append(h.onArtifact, fn)
}

func (h *hooks) registryLoaded(reg *registry.Registry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRegistryLoaded {
		fn(reg)
	}
}

func (h *hooks) sourceLoaded(id sources.ID, m *sources.Mapping) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSourceLoaded {
		fn(id, m)
	}
}

func (h *hooks) reconciled(r *reconcile.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onReconciled {
		fn(r)
	}
}

func (h *hooks) artifactWritten(a codec.Artifact) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onArtifact {
		fn(a)
	}
}
