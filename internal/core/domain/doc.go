// Package domain defines the core business entities for lexbrief.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawPage: Extracted text of one physical page
//   - Page: A page carrying its inferred legal/reporter page label
//   - Chunk: A retrievable window of page text with its embedding
//   - Document: An ingested upload within a session
//   - RetrievalResult: A scored chunk returned for a query
//   - Answer: A cited answer composed from retrieved passages
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
