// Package profile implements profile storage and retrieval.
//
// A profile is one JSON document per registered identity, keyed by the
// lowercase username. The document carries the social graph, play statistics
// and the per-theme level-unlock map that the reconciliation engine
// (profile/reconcile) keeps in sync with the content catalog.
//
// # Storage layout
//
// Documents live in the `profiles` table (username PK, email unique, document
// JSON); the email-to-username identifier index lives in `email_index`. Patches
// are applied with the database's JSON merge-patch primitive so that two
// concurrent reconciliations of the same profile merge instead of clobbering
// each other.
package profile
