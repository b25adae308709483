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


package domaincfg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/attuneworks/groundwork/core"
)

const defaultCacheTTL = 5 * time.Minute

// Loader loads domain configs from a directory of YAML files.
// A domain's config lives at <dir>/<domain>.yaml; when an environment is
// set, <dir>/<domain>.<env>.yaml is deep-merged over it if present.
//
// Loader is safe for concurrent use.
type Loader struct {
	dir         string
	environment string
	cacheTTL    time.Duration
	logger      *slog.Logger

	mu     sync.RWMutex
	cache  map[string]*cacheEntry
	closed bool

	watcher *watcher
}

type cacheEntry struct {
	result   *LoadResult
	cachedAt time.Time
}

// Option configures a Loader.
type Option func(*Loader) error

// WithEnvironment sets the environment whose override files are merged
// over base configs. Empty disables overrides.
func WithEnvironment(env string) Option {
	return func(l *Loader) error {
		l.environment = env
		return nil
	}
}

// WithCacheTTL sets how long loaded configs are served from cache.
// Default is 5 minutes. Zero or negative disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(l *Loader) error {
		l.cacheTTL = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a Loader reading from dir.
func NewLoader(dir string, opts ...Option) (*Loader, error) {
	if dir == "" {
		return nil, fmt.Errorf("config directory required")
	}

	l := &Loader{
		dir:      dir,
		cacheTTL: defaultCacheTTL,
		logger:   slog.Default().With("component", "domaincfg"),
		cache:    make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Load returns the config for a domain, serving from cache when fresh.
func (l *Loader) Load(ctx context.Context, domain string) (*LoadResult, error) {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return nil, ErrLoaderClosed
	}
	if entry, ok := l.cache[domain]; ok && time.Since(entry.cachedAt) < l.cacheTTL {
		l.mu.RUnlock()
		cached := *entry.result
		cached.Cached = true
		return &cached, nil
	}
	l.mu.RUnlock()

	return l.load(ctx, domain)
}

// Reload bypasses the cache and loads the domain config from disk.
func (l *Loader) Reload(ctx context.Context, domain string) (*LoadResult, error) {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return nil, ErrLoaderClosed
	}
	l.mu.RUnlock()

	return l.load(ctx, domain)
}

func (l *Loader) load(ctx context.Context, domain string) (*LoadResult, error) {
	basePath := filepath.Join(l.dir, domain+".yaml")
	raw, err := os.ReadFile(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &core.DomainConfigError{Domain: domain, Err: ErrConfigNotFound}
		}
		return nil, &core.DomainConfigError{Domain: domain, Err: err}
	}

	var merged map[string]any
	if err := yaml.Unmarshal(raw, &merged); err != nil {
		return nil, &core.DomainConfigError{Domain: domain, Err: fmt.Errorf("parse %s: %w", basePath, err)}
	}

	source := basePath
	if l.environment != "" {
		overridePath := filepath.Join(l.dir, fmt.Sprintf("%s.%s.yaml", domain, l.environment))
		overrideRaw, err := os.ReadFile(overridePath)
		if err == nil {
			var override map[string]any
			if err := yaml.Unmarshal(overrideRaw, &override); err != nil {
				return nil, &core.DomainConfigError{Domain: domain, Err: fmt.Errorf("parse %s: %w", overridePath, err)}
			}
			merged = deepMerge(merged, override)
			source = overridePath
		} else if !os.IsNotExist(err) {
			return nil, &core.DomainConfigError{Domain: domain, Err: err}
		}
	}

	cfg, err := decodeConfig(merged)
	if err != nil {
		return nil, &core.DomainConfigError{Domain: domain, Err: err}
	}
	validation := Validate(cfg)
	if !validation.Valid {
		return nil, &core.DomainConfigError{
			Domain: domain,
			Field:  firstField(validation.Errors),
			Err:    fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(validation.Errors, "; ")),
		}
	}
	for _, warning := range validation.Warnings {
		l.logger.Warn("domain config warning", "domain", domain, "warning", warning)
	}

	result := &LoadResult{
		Config:   cfg,
		LoadTime: time.Now().UTC(),
		Source:   source,
		Warnings: validation.Warnings,
	}

	// Cancellation must not leave a partial cache write behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrLoaderClosed
	}
	l.cache[domain] = &cacheEntry{result: result, cachedAt: time.Now()}
	l.mu.Unlock()

	return result, nil
}

// LoadAll loads every base config in the directory. A failure in one
// domain is recorded on its LoadResult and does not abort the others.
func (l *Loader) LoadAll(ctx context.Context) (map[string]*LoadResult, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read config directory: %w", err)
	}

	results := make(map[string]*LoadResult)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		domain, ok := baseDomainName(entry.Name())
		if !ok {
			continue
		}
		result, err := l.Load(ctx, domain)
		if err != nil {
			l.logger.Warn("failed to load domain config", "domain", domain, "error", err)
			results[domain] = &LoadResult{Errors: []string{err.Error()}}
			continue
		}
		results[domain] = result
	}
	return results, nil
}

// Invalidate drops a domain's cache entry.
func (l *Loader) Invalidate(domain string) {
	l.mu.Lock()
	delete(l.cache, domain)
	l.mu.Unlock()
}

// Close stops the watcher, if running, and rejects further loads.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		return w.close()
	}
	return nil
}

// decodeConfig converts a merged YAML map into a typed DomainConfig by
// round-tripping through the YAML codec.
func decodeConfig(merged map[string]any) (*DomainConfig, error) {
	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var cfg DomainConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// baseDomainName extracts the domain from a base config filename.
// Environment override files (two inner dots) are not base configs.
func baseDomainName(filename string) (string, bool) {
	if !strings.HasSuffix(filename, ".yaml") {
		return "", false
	}
	name := strings.TrimSuffix(filename, ".yaml")
	if name == "" || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}

func firstField(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	field, _, _ := strings.Cut(errs[0], ":")
	return strings.TrimSpace(field)
}
