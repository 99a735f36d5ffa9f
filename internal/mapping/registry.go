package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds named profiles. The built-in Indeed_Standard profile is
// always present.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Config
}

// NewRegistry returns a registry seeded with the built-in profile.
func NewRegistry() *Registry {
	r := &Registry{profiles: map[string]*Config{}}
	r.Add(IndeedStandard())
	return r
}

// Add registers cfg under its name, replacing any profile of the same name.
func (r *Registry) Add(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[cfg.Name()] = cfg
}

// Get returns the named profile.
func (r *Registry) Get(name string) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return cfg, nil
}

// Names lists registered profiles alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LoadDir registers every *.yaml / *.yml profile in dir. A profile without a
// name takes its file name without extension.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("mapping: read profiles dir: %w", err)
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		cfg, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		if cfg.Name() == "" {
			cfg.name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		r.Add(cfg)
	}
	return nil
}
