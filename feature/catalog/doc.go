// Package catalog implements the content catalog reader.
//
// The catalog is the externally authored set of themes, each carrying an
// ordered list of level ids. It is stored as one JSON object per theme in the
// storage bucket ("themes/matrix.json" -> {"levels": ["l1", "l2"]}); the theme
// order is the lexical object-listing order of the bucket.
//
// The package exposes:
//  1. Reader: listing themes and per-theme levels, plus a point-in-time
//     Snapshot used by the profile reconciliation engine.
//  2. CachedReader: a TTL snapshot cache with stampede protection, so catalog
//     reads during a login burst hit storage once.
//
// The catalog is never mutated here; authoring happens outside this service.
package catalog
