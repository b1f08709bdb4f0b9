// Package project defines the catalog entities shown by projectdeck.
//
// Project Representation:
//
// Each project is a catalogued entity with:
//   - Opaque unique ID (UUID when created by the catalog server)
//   - Display name and optional description
//   - URL-safe slug used verbatim in routes (/projects/{slug})
//   - Optional metadata (logo, token symbol, repository, website, tags)
//   - Membership, reputation and activity counters (never negative)
//
// Optional string fields use the empty string for absence. Absence of a
// description, logo or token symbol is a valid state with its own
// presentation, not an error.
//
// Collections fetched from the catalog must have unique IDs and unique
// slugs; see ValidateCollection.
package project
