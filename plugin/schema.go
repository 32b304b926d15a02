// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plugin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// PointerSize is the byte width of a table member holding a function or an
// opaque handle.
const PointerSize = 8

// ErrInvalidSchema is returned for malformed schemas.
var ErrInvalidSchema = errors.New("plugin: invalid schema")

// Field is one member of a capability table.
type Field struct {
	// Name identifies the member. Names are unique within a schema.
	Name string

	// Size is the member's byte width as seen by size-oriented callers.
	Size int
}

// Func returns a pointer-sized field, the common case for table members.
func Func(name string) Field {
	return Field{Name: name, Size: PointerSize}
}

// Schema describes the layout of a capability table: its version and its
// members in declaration order. Later versions may only append members.
type Schema struct {
	Version *semver.Version
	Fields  []Field
}

// NewSchema parses version and validates the field list.
func NewSchema(version string, fields ...Field) (Schema, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return Schema{}, fmt.Errorf("%w: version %q: %v", ErrInvalidSchema, version, err)
	}
	s := Schema{Version: v, Fields: fields}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Use only for package-level schema declarations.
func MustSchema(version string, fields ...Field) Schema {
	s, err := NewSchema(version, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate reports whether the schema is well formed.
func (s Schema) Validate() error {
	if s.Version == nil {
		return fmt.Errorf("%w: missing version", ErrInvalidSchema)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if f.Size <= 0 {
			return fmt.Errorf("%w: field %q has size %d", ErrInvalidSchema, f.Name, f.Size)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: field %q declared twice", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.Fields)
}

// Size returns the table size in bytes: the sum of all field sizes.
func (s Schema) Size() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Size
	}
	return n
}

// Major returns the major version, or 0 if the schema has no version.
func (s Schema) Major() uint64 {
	if s.Version == nil {
		return 0
	}
	return s.Version.Major()
}

// Offset returns the byte offset of the named field.
func (s Schema) Offset(name string) (int, bool) {
	off := 0
	for _, f := range s.Fields {
		if f.Name == name {
			return off, true
		}
		off += f.Size
	}
	return 0, false
}

// Has reports whether the schema declares the named field.
func (s Schema) Has(name string) bool {
	_, ok := s.Offset(name)
	return ok
}

// Prefix returns the schema restricted to its first n fields.
// The version is kept; n is clamped to [0, Len()].
func (s Schema) Prefix(n int) Schema {
	n = max(0, min(n, len(s.Fields)))
	return Schema{Version: s.Version, Fields: s.Fields[:n:n]}
}

// fieldsWithin returns how many leading fields end at or before size bytes.
func (s Schema) fieldsWithin(size int) int {
	end := 0
	for i, f := range s.Fields {
		end += f.Size
		if end > size {
			return i
		}
	}
	return len(s.Fields)
}

// commonPrefix returns the length of the shorter field list if both lists
// agree on it, member by member.
func commonPrefix(a, b []Field) (int, bool) {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return 0, false
		}
	}
	return n, true
}

// MajorFromName extracts the major version from a capability name that
// follows the "<subsystem>_api_v<major>" convention.
func MajorFromName(name string) (uint64, bool) {
	i := strings.LastIndex(name, "_v")
	if i < 0 || i+2 == len(name) {
		return 0, false
	}
	major, err := strconv.ParseUint(name[i+2:], 10, 64)
	if err != nil {
		return 0, false
	}
	return major, true
}
