package export

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry maps format names to exporters. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Exporter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Exporter)}
}

// Register adds exporters under their Name. Every exporter is attempted; the
// failures are joined, each wrapping ErrNilExporter, ErrUnnamedExporter or
// ErrDuplicateFormat.
func (r *Registry) Register(exporters ...Exporter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, exporter := range exporters {
		if err := r.add(exporter); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) add(exporter Exporter) error {
	if exporter == nil {
		return ErrNilExporter
	}
	name := exporter.Name()
	if name == "" {
		return ErrUnnamedExporter
	}
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateFormat, name)
	}
	r.byName[name] = exporter
	return nil
}

// MustRegister is Register for wiring that cannot fail at runtime.
func (r *Registry) MustRegister(exporters ...Exporter) {
	if err := r.Register(exporters...); err != nil {
		panic(err)
	}
}

// Get returns the exporter for name. Unknown names wrap ErrUnknownFormat.
func (r *Registry) Get(name string) (Exporter, error) {
	r.mu.RLock()
	exporter, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return exporter, nil
}

// List returns the registered format names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}
