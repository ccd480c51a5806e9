// Package types defines the value model, configuration, domain aggregates,
// change events, and standard errors shared by the fantasydb persistence
// core. Packages under internal/ depend on types and never on each other's
// concrete implementations.
package types
