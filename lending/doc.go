// Package lending contains the domain core of the lending engine: the
// CatalogItem, Patron and Loan entities with their local invariants, the closed
// LoanStatus variant with its transition rules, the Money type, the pure
// late-fee calculation and the business error taxonomy.
//
// The package is storage-agnostic and side-effect free. All multi-entity state
// transitions are orchestrated by the engine package; this package only makes
// illegal single-entity states unrepresentable.
package lending
