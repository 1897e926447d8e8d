// Package storage defines the repository collaborator the importer talks to
// and the Entity shared by its implementations.
//
// Subpackages memory and sqlite provide a map-backed repository and a
// SQLite-backed one. Both expose objects to Query and Load only after Save,
// and return matches in the order objects were first saved.
package storage
