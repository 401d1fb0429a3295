package parser

import (
	"path/filepath"
	"strings"
)

// Registry maps file extensions to the adapter that handles them.
type Registry struct {
	adapters map[string]Adapter // extension -> adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register binds every extension an adapter claims to it.
func (r *Registry) Register(a Adapter) {
	for _, ext := range a.Extensions() {
		r.adapters[strings.ToLower(ext)] = a
	}
}

// ForFile returns the adapter for a given file path, or nil if none
// matches — the indexer skips files with no registered adapter (§4.5).
func (r *Registry) ForFile(path string) Adapter {
	ext := strings.ToLower(filepath.Ext(path))
	return r.adapters[ext]
}

// SupportedExtensions returns all registered extensions.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.adapters))
	for ext := range r.adapters {
		exts = append(exts, ext)
	}
	return exts
}
