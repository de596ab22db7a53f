// Package types defines the Store and table interfaces, entity types, and
// standard errors for the LinkTrove storage engine.
package types
