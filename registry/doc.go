// Package registry persists organization roles. The default RoleRegistry
// composes a go-repository-bun repository for reads and runs level
// assignment, deletion and reordering inside Bun transactions.
package registry
