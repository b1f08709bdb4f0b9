// Package store holds the catalog served by the companion server.
//
// A Store is an in-memory, concurrency-safe project collection seeded
// from a JSON, YAML or TOML file. Watch reloads the seed when it changes
// on disk; a reload that fails to decode or validate keeps the previous
// collection. Projects created through the API live only in memory and
// survive reloads.
package store
