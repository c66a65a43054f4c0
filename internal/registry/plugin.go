package registry

import (
	"fmt"
	"path/filepath"
	"plugin"

	"github.com/harrison/casework/internal/cases"
)

// Symbols a plugin file may export. The function hook takes precedence; the
// package-scope variable is the best-effort convenience form.
const (
	pluginHookSymbol = "ProvideCaseTypes"
	pluginVarSymbol  = "CaseTypes"
)

// fileProvider wraps the case types loaded from one plugin file.
type fileProvider struct {
	name  string
	types []*cases.CaseType
}

func (p *fileProvider) Name() string                 { return p.name }
func (p *fileProvider) CaseTypes() []*cases.CaseType { return p.types }

// LoadPlugin opens a built Go plugin and wraps its contributed case types in
// a Provider named after the file. The plugin either exports
//
//	func ProvideCaseTypes() []*cases.CaseType
//
// or a package-scope variable
//
//	var CaseTypes []*cases.CaseType
//
// Plugins must be built against the same module versions as the host binary;
// that constraint comes from the Go runtime, not from this package.
func LoadPlugin(path string) (Provider, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}

	name := filepath.Base(path)

	if sym, err := p.Lookup(pluginHookSymbol); err == nil {
		hook, ok := sym.(func() []*cases.CaseType)
		if !ok {
			return nil, fmt.Errorf("plugin %s: %s has type %T, want func() []*cases.CaseType",
				path, pluginHookSymbol, sym)
		}
		return &fileProvider{name: name, types: hook()}, nil
	}

	sym, err := p.Lookup(pluginVarSymbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s exports neither %s nor %s",
			path, pluginHookSymbol, pluginVarSymbol)
	}
	types, ok := sym.(*[]*cases.CaseType)
	if !ok {
		return nil, fmt.Errorf("plugin %s: %s has type %T, want []*cases.CaseType",
			path, pluginVarSymbol, sym)
	}
	return &fileProvider{name: name, types: *types}, nil
}

// DiscoverPlugins loads each plugin file and registers its case types.
func (r *Registry) DiscoverPlugins(paths ...string) error {
	for _, path := range paths {
		p, err := LoadPlugin(path)
		if err != nil {
			return err
		}
		if err := r.Discover(p); err != nil {
			return err
		}
	}
	return nil
}
