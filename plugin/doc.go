// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package plugin implements the capability registry a compositor exposes to
// optional extension modules.
//
// A capability is a named table of operations (usually an interface value)
// published by the module that implements it. Other modules look it up by a
// well-known name such as "renderer_api_v1" together with the schema they
// were built against:
//
//	cap, ok := reg.Lookup(renderer.APIName, renderer.Schema)
//	if !ok {
//	    // capability unavailable: behave as if no extension is present
//	}
//
// # Schema Negotiation
//
// Every registration carries a Schema: a semantic version plus the ordered
// list of table members. Tables evolve only by appending members. A lookup
// succeeds when both sides agree on the major version and on the common
// prefix of the member list; the returned Capability then exposes exactly
// that common prefix, so an older caller never sees members it does not
// know about and a newer caller never sees members the registrant lacks.
//
// LookupSize keeps the byte-size form of the same check for callers that
// only know how large the table was when they were built.
//
// # Lifecycle
//
// A Registry belongs to one compositor instance. Records are added while
// optional subsystems initialize and dropped together by Close. Registering
// the same name twice is an error: it means two modules claim one identity.
//
// # Thread Safety
//
// Registry is safe for concurrent use, although compositors only touch it
// from their event-dispatch goroutine.
package plugin
