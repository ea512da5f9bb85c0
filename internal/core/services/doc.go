// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Retrieval and segmentation are
// CPU-bound; only the embedding and LLM ports perform I/O.
package services
