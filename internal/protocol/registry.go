package protocol

import (
	"slices"
	"sync"

	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
)

// registry is a keyed set of handlers that remembers insertion order, so
// the importers in a compile request are listed in registration order.
type registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	order   []K
}

func newRegistry[K comparable, V any]() *registry[K, V] {
	return &registry[K, V]{entries: make(map[K]V, 4)}
}

// put inserts or replaces the handler for key. A replaced handler keeps its
// original position.
func (r *registry[K, V]) put(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}

	r.entries[key] = value
}

// remove deletes key and reports whether it was present.
func (r *registry[K, V]) remove(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; !exists {
		return false
	}

	delete(r.entries, key)

	r.order = slices.DeleteFunc(r.order, func(k K) bool { return k == key })

	return true
}

func (r *registry[K, V]) get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[key]

	return v, ok
}

// values returns a snapshot of the handlers in insertion order.
func (r *registry[K, V]) values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]V, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k])
	}

	return out
}

func (r *registry[K, V]) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Registries holds the callback handlers a session routes compiler requests
// to. Importers are keyed by their ID, host functions by name. Registering
// an existing key replaces the handler; removing a missing key is a no-op.
//
// Registries are safe for concurrent use, but a handler must not be removed
// while a compilation that uses it is running.
type Registries struct {
	fileImporters   *registry[uint32, importer.FileImporter]
	customImporters *registry[uint32, importer.CustomImporter]
	functions       *registry[string, function.HostFunction]
}

// NewRegistries creates empty registries.
func NewRegistries() *Registries {
	return &Registries{
		fileImporters:   newRegistry[uint32, importer.FileImporter](),
		customImporters: newRegistry[uint32, importer.CustomImporter](),
		functions:       newRegistry[string, function.HostFunction](),
	}
}

// RegisterFileImporter registers imp under imp.ID().
func (r *Registries) RegisterFileImporter(imp importer.FileImporter) {
	r.fileImporters.put(imp.ID(), imp)
}

// UnregisterFileImporter removes the file importer with the given id.
func (r *Registries) UnregisterFileImporter(id uint32) bool {
	return r.fileImporters.remove(id)
}

// FileImporter returns the file importer registered under id.
func (r *Registries) FileImporter(id uint32) (importer.FileImporter, bool) {
	return r.fileImporters.get(id)
}

// FileImporters returns the registered file importers in registration order.
func (r *Registries) FileImporters() []importer.FileImporter {
	return r.fileImporters.values()
}

// RegisterCustomImporter registers imp under imp.ID().
func (r *Registries) RegisterCustomImporter(imp importer.CustomImporter) {
	r.customImporters.put(imp.ID(), imp)
}

// UnregisterCustomImporter removes the custom importer with the given id.
func (r *Registries) UnregisterCustomImporter(id uint32) bool {
	return r.customImporters.remove(id)
}

// CustomImporter returns the custom importer registered under id.
func (r *Registries) CustomImporter(id uint32) (importer.CustomImporter, bool) {
	return r.customImporters.get(id)
}

// CustomImporters returns the registered custom importers in registration order.
func (r *Registries) CustomImporters() []importer.CustomImporter {
	return r.customImporters.values()
}

// RegisterFunction registers fn under fn.Name().
func (r *Registries) RegisterFunction(fn function.HostFunction) {
	r.functions.put(fn.Name(), fn)
}

// UnregisterFunction removes the host function with the given name.
func (r *Registries) UnregisterFunction(name string) bool {
	return r.functions.remove(name)
}

// Function returns the host function registered under name.
func (r *Registries) Function(name string) (function.HostFunction, bool) {
	return r.functions.get(name)
}

// FunctionSignatures returns the signatures of the registered host
// functions in registration order.
func (r *Registries) FunctionSignatures() []string {
	fns := r.functions.values()

	signatures := make([]string, 0, len(fns))
	for _, fn := range fns {
		signatures = append(signatures, fn.Signature())
	}

	return signatures
}

// Len returns the number of registered handlers of every kind.
func (r *Registries) Len() int {
	return r.fileImporters.len() + r.customImporters.len() + r.functions.len()
}
