// Package domain defines the core domain types and interfaces.
//
// This package contains model structs, repository contracts, and the shared
// error taxonomy. No implementation code - just contracts. Keeping the
// interfaces here, on the consumer side, prevents circular imports between
// the services and the storage layer.
package domain
