// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Ingestion Interfaces
//
//   - Connector: Walks the corpus directory and emits raw files
//   - Normaliser: Turns one raw file into Documents
//   - NormaliserRegistry: Dispatches raw files by extension
//   - PostProcessor / PostProcessorPipeline: Splits Documents into Chunks
//   - EmbeddingService: Generates unit vectors
//
// # Query Interfaces
//
//   - VectorIndex: Nearest-neighbour lookup over the persisted index.
//     May be nil, in which case the service runs degraded.
//   - LLMService: Sequence generation for the final answer
//   - PromptStore: Prompt templates
//   - QuestionStore: Questions waiting for a human answer
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
