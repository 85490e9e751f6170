// Package reconcile implements the profile reconciliation engine.
//
// Reconciliation brings a stored profile document into the canonical shape
// derived from the current catalog snapshot: every required top-level field
// present (with its default when missing) and a theme entry for every catalog
// theme (first level unlocked on creation). The algorithm is idempotent; a
// profile already in canonical shape produces zero writes.
//
// # Plan / Apply
//
// The engine splits the work into a pure planning step and an apply step:
//
//  1. Plan compares a document against the snapshot and computes the minimal
//     field-level and catalog-level patches.
//  2. Apply issues the patches through the profile store: at most two write
//     operations, however many fields or themes were missing. Patches are
//     merged server-side (JSON merge patch), so a concurrent reconciliation
//     inserting the same theme is last-writer-safe rather than clobbering.
//
// Reconcile ties the two together for a single profile; BuildInitial computes
// the full canonical document in one shot for the registration create path.
//
// # Existing entries
//
// Pre-existing theme entries are never altered. Levels missing inside an
// existing entry (mid-theme catalog growth) are only added when the
// BackfillLevels option is on, and always locked.
package reconcile
