// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plugin

// Capability is the result of a successful lookup: the registrant's table
// together with the negotiated schema prefix the caller may use.
//
// The zero value is an absent capability.
type Capability struct {
	name     string
	table    any
	declared Schema
	schema   Schema
}

// Name returns the capability name, or "" for an absent capability.
func (c Capability) Name() string { return c.name }

// Table returns the registrant's table as registered.
// Callers must restrict themselves to the members reported by Exposes.
func (c Capability) Table() any { return c.table }

// Schema returns the negotiated schema: the fields both sides agree on.
func (c Capability) Schema() Schema { return c.schema }

// Declared returns the schema the registrant declared.
func (c Capability) Declared() Schema { return c.declared }

// Size returns the negotiated table size in bytes.
func (c Capability) Size() int { return c.schema.Size() }

// Exposes reports whether the named member is inside the negotiated prefix.
func (c Capability) Exposes(field string) bool { return c.schema.Has(field) }

// Offset returns the byte offset of a member inside the negotiated prefix.
func (c Capability) Offset(field string) (int, bool) { return c.schema.Offset(field) }

// As returns the capability's table as a T.
func As[T any](c Capability) (T, bool) {
	t, ok := c.table.(T)
	return t, ok
}
