package payment

import (
	"fmt"
	"sync"

	"bookstore/internal/model"
)

// Registry maps payment method codes to providers. Providers are registered
// once at startup and never removed.
type Registry struct {
	mu        sync.RWMutex
	providers map[model.PaymentMethod]Provider
	order     []model.PaymentMethod
}

// NewRegistry creates a registry holding the given providers.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[model.PaymentMethod]Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a provider. A method may only be registered once.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	method := p.Method()
	if _, exists := r.providers[method]; exists {
		return fmt.Errorf("payment provider %s already registered", method)
	}
	r.providers[method] = p
	r.order = append(r.order, method)
	return nil
}

// Get returns the provider for a method.
func (r *Registry) Get(method model.PaymentMethod) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[method]
	return p, ok
}

// Resolve returns the provider for a method or ErrUnsupportedMethod.
func (r *Registry) Resolve(method model.PaymentMethod) (Provider, error) {
	p, ok := r.Get(method)
	if !ok {
		return nil, model.ErrUnsupportedMethod
	}
	return p, nil
}

// Supports reports whether a provider is registered for method.
func (r *Registry) Supports(method model.PaymentMethod) bool {
	_, ok := r.Get(method)
	return ok
}

// Methods lists the registered methods in registration order.
func (r *Registry) Methods() []model.MethodInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]model.MethodInfo, 0, len(r.order))
	for _, method := range r.order {
		infos = append(infos, r.providers[method].Info())
	}
	return infos
}
