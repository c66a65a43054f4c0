// Package registry catalogs case types contributed by providers, so a name
// arriving from a command surface or a campaign file can be resolved to a
// case type without hand-wired imports.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/harrison/casework/internal/cases"
)

// Provider contributes case types to a registry. The explicit hook is the
// primary contribution surface; plugin files are loaded through LoadPlugin
// and wrapped in this interface too.
type Provider interface {
	Name() string
	CaseTypes() []*cases.CaseType
}

// NameCollisionError reports two distinct case types sharing one name.
type NameCollisionError struct {
	TypeName string
	First    string // provider already registered
	Second   string // provider attempting the duplicate
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("case type %q registered by both %q and %q",
		e.TypeName, e.First, e.Second)
}

// CaseNotFoundError reports a lookup for an unregistered case type name.
// Known carries the registered names for suggestion lines.
type CaseNotFoundError struct {
	Name  string
	Known []string
}

func (e *CaseNotFoundError) Error() string {
	return fmt.Sprintf("no case type named %q", e.Name)
}

// IsNameCollision reports whether err is a NameCollisionError.
func IsNameCollision(err error) bool {
	var target *NameCollisionError
	return errors.As(err, &target)
}

// IsCaseNotFound reports whether err is a CaseNotFoundError.
func IsCaseNotFound(err error) bool {
	var target *CaseNotFoundError
	return errors.As(err, &target)
}

type entry struct {
	caseType *cases.CaseType
	provider string
}

// Registry is a catalog of case types keyed by name. It starts empty, is
// populated by Discover, and is safe for concurrent use. Re-discovering the
// same provider is a no-op per (provider, type name) pair, so a registry
// can be rebuilt from configuration more than once.
type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Discover loads every provider's case types into the registry. Collisions
// between distinct providers are errors; everything registered before the
// collision stays registered.
func (r *Registry) Discover(providers ...Provider) error {
	for _, p := range providers {
		name := p.Name()
		if name == "" {
			return fmt.Errorf("provider with empty name")
		}
		for _, ct := range p.CaseTypes() {
			if ct == nil {
				return fmt.Errorf("provider %q contributed a nil case type", name)
			}
			if err := r.register(name, ct); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) register(provider string, ct *cases.CaseType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[ct.Name()]
	if !ok {
		r.entries[ct.Name()] = entry{caseType: ct, provider: provider}
		return nil
	}
	if existing.provider == provider {
		// same provider, same name: re-discovery, keep the first
		return nil
	}
	return &NameCollisionError{
		TypeName: ct.Name(),
		First:    existing.provider,
		Second:   provider,
	}
}

// Lookup resolves a case type by name.
func (r *Registry) Lookup(name string) (*cases.CaseType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, &CaseNotFoundError{Name: name, Known: r.namesLocked()}
	}
	return e.caseType, nil
}

// ProviderOf returns the provider that registered a case type name, empty
// when the name is unknown.
func (r *Registry) ProviderOf(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name].provider
}

// Names returns all registered case type names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

// Len returns the number of registered case types.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
