// Package adapters routes checkout traffic to the payment provider
// integration configured for the deployment.
package adapters

import (
	"github.com/reelforge/reelforge/internal/checkout/domain"
)

type Registry struct {
	adapters map[string]domain.ProviderAdapter
}

func NewRegistry(adapters ...domain.ProviderAdapter) *Registry {
	m := make(map[string]domain.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Provider()] = a
	}
	return &Registry{adapters: m}
}

func (r *Registry) Get(provider string) (domain.ProviderAdapter, error) {
	a, ok := r.adapters[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return a, nil
}

func (r *Registry) ProviderExists(provider string) bool {
	_, ok := r.adapters[provider]
	return ok
}
