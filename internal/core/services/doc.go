// Package services implements the core use cases for Curio.
//
// This package contains the business logic orchestration:
//
//   - IngestService: dedup-embed-persist ingestion pipeline
//   - Registry: lazily-built, process-cached retrieval pipelines
//   - RetrievalPipeline: fused lexical+vector search, rerank, augment
//   - DocumentService: direct entry management
//
// Services depend only on domain types and port interfaces, never on
// concrete adapters.
package services
