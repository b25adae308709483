// Copyright 2025 Attune Works
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


package adapter

import (
	"context"
	"sync"

	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
)

// Constructor builds an adapter from a loaded domain config.
type Constructor func(cfg *domaincfg.DomainConfig) (Adapter, error)

// Registry maps domain names to adapter constructors and memoizes one
// adapter instance per domain. It is an explicit, injected object rather
// than package-level state.
//
// Registry is safe for concurrent use.
type Registry struct {
	loader *domaincfg.Loader

	mu           sync.Mutex
	constructors map[string]Constructor
	instances    map[string]Adapter
}

// NewRegistry creates an empty registry backed by a config loader.
func NewRegistry(loader *domaincfg.Loader) *Registry {
	return &Registry{
		loader:       loader,
		constructors: make(map[string]Constructor),
		instances:    make(map[string]Adapter),
	}
}

// Register installs a constructor for a domain, replacing any previous
// one. A previously memoized instance for the domain is discarded.
func (r *Registry) Register(domain string, ctor Constructor) {
	r.mu.Lock()
	r.constructors[domain] = ctor
	delete(r.instances, domain)
	r.mu.Unlock()
}

// Get returns the adapter for a domain, constructing and memoizing it on
// first access. Construction loads the domain's config through the loader.
func (r *Registry) Get(ctx context.Context, domain string) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if instance, ok := r.instances[domain]; ok {
		return instance, nil
	}

	ctor, ok := r.constructors[domain]
	if !ok {
		return nil, &core.DomainConfigError{Domain: domain, Err: ErrNotRegistered}
	}

	result, err := r.loader.Load(ctx, domain)
	if err != nil {
		return nil, err
	}

	instance, err := ctor(result.Config)
	if err != nil {
		return nil, err
	}
	r.instances[domain] = instance
	return instance, nil
}

// IsRegistered reports whether a constructor exists for the domain.
func (r *Registry) IsRegistered(domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.constructors[domain]
	return ok
}

// ClearInstances discards memoized adapter instances, keeping the
// registrations. Intended for test isolation and config hot-reload.
func (r *Registry) ClearInstances() {
	r.mu.Lock()
	r.instances = make(map[string]Adapter)
	r.mu.Unlock()
}
