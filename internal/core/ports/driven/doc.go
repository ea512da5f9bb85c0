// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SessionStore: Per-session documents and embedded chunks, held in memory
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - PageExtractor: Turns uploaded bytes into per-page text
//   - Segmenter: Labels pages and cuts them into chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Composes cited answers. Without it, answers are built from the top snippets.
//   - PromptStore: User-editable prompts. Without it, embedded defaults are used.
//   - FolderWatcher: Keeps a session in step with a local folder.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
