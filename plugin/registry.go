// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Registration errors.
var (
	// ErrDuplicateRegistration is returned when a name is registered twice.
	ErrDuplicateRegistration = errors.New("plugin: capability already registered")

	// ErrInvalidCapability is returned for an empty name or a nil table.
	ErrInvalidCapability = errors.New("plugin: invalid capability")

	// ErrClosed is returned when registering into a closed registry.
	ErrClosed = errors.New("plugin: registry closed")
)

// record is one registered capability. The table is owned by the module
// that registered it and is never copied.
type record struct {
	table  any
	schema Schema
}

// Registry maps capability names to tables.
type Registry struct {
	mu      sync.RWMutex
	records map[string]record
	closed  bool
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report registrations and rejected lookups.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		records: make(map[string]record),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register publishes table under name with the given schema.
//
// Registration fails if name is already taken; the existing record is left
// untouched. If name follows the "<subsystem>_api_v<major>" convention the
// schema's major version must match it.
func (r *Registry) Register(name string, table any, schema Schema) error {
	if name == "" || table == nil {
		return fmt.Errorf("%w: name=%q table=%T", ErrInvalidCapability, name, table)
	}
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidCapability, name, err)
	}
	if major, ok := MajorFromName(name); ok && major != schema.Major() {
		return fmt.Errorf("%w: %q declares schema version %s", ErrInvalidCapability, name, schema.Version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if old, exists := r.records[name]; exists {
		r.logger.Error("duplicate capability registration",
			"name", name, "registered", old.schema.Version, "rejected", schema.Version)
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, name)
	}

	r.records[name] = record{table: table, schema: schema}
	r.logger.Info("capability registered",
		"name", name, "version", schema.Version, "fields", schema.Len(), "size", schema.Size())
	return nil
}

// MustRegister is like Register but panics on error.
// Registration happens while the compositor starts up, so a collision is a
// programming error in one of the modules involved.
func (r *Registry) MustRegister(name string, table any, schema Schema) {
	if err := r.Register(name, table, schema); err != nil {
		panic(err)
	}
}

// Lookup returns the capability registered under name if want is compatible
// with the registered schema: same major version and identical fields on
// the common prefix. The returned Capability exposes only that prefix.
//
// A false result means the capability is unavailable; callers fall back to
// their default behavior. Every miss is logged here once: an unknown name at
// Debug, an incompatible schema at Warn.
func (r *Registry) Lookup(name string, want Schema) (Capability, bool) {
	rec, ok := r.get(name)
	if !ok {
		r.logger.Debug("capability not registered", "name", name)
		return Capability{}, false
	}
	if want.Version == nil || want.Major() != rec.schema.Major() {
		r.logger.Warn("capability version mismatch",
			"name", name, "registered", rec.schema.Version, "requested", want.Version)
		return Capability{}, false
	}
	n, ok := commonPrefix(want.Fields, rec.schema.Fields)
	if !ok || n == 0 {
		r.logger.Warn("capability layout mismatch", "name", name)
		return Capability{}, false
	}

	negotiated := rec.schema.Prefix(n)
	if want.Version.LessThan(rec.schema.Version) {
		negotiated.Version = want.Version
	}
	return Capability{
		name:     name,
		table:    rec.table,
		declared: rec.schema,
		schema:   negotiated,
	}, true
}

// LookupSize is the byte-size form of Lookup. It exposes the leading fields
// that fit entirely within min(size, declared size) bytes.
func (r *Registry) LookupSize(name string, size int) (Capability, bool) {
	rec, ok := r.get(name)
	if !ok {
		r.logger.Debug("capability not registered", "name", name)
		return Capability{}, false
	}
	n := 0
	if size > 0 {
		n = rec.schema.fieldsWithin(size)
	}
	if n == 0 {
		r.logger.Warn("capability size too small", "name", name, "size", size)
		return Capability{}, false
	}
	return Capability{
		name:     name,
		table:    rec.table,
		declared: rec.schema,
		schema:   rec.schema.Prefix(n),
	}, true
}

func (r *Registry) get(name string) (record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	return rec, ok
}

// Names returns the registered capability names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Close drops every record. Lookups on a closed registry find nothing and
// registrations fail with ErrClosed. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]record)
	r.closed = true
}
