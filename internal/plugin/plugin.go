// Package plugin lets optional features mount their own API routes.
package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

var ErrDuplicatePlugin = errors.New("plugin already registered")

// Plugin adds routes under the API group it is mounted on.
type Plugin interface {
	Name() string
	Description() string
	Version() string
	RegisterRoutes(r gin.IRouter)
}

type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Registry holds plugins by name.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds p. Names must be unique.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[p.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Name())
	}
	r.plugins[p.Name()] = p
	return nil
}

// Mount registers the routes of every plugin on group, in name order.
func (r *Registry) Mount(group gin.IRouter) {
	for _, p := range r.sorted() {
		p.RegisterRoutes(group)
	}
}

func (r *Registry) List() []Info {
	sorted := r.sorted()
	out := make([]Info, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, Info{Name: p.Name(), Description: p.Description(), Version: p.Version()})
	}
	return out
}

func (r *Registry) sorted() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
