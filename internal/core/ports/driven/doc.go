// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// Each interface represents an external capability the core consumes:
// vector storage, embedding generation, LLM inference, reranking, and
// source fetching. Adapters in internal/adapters/driven implement
// these interfaces; the core services depend only on the interfaces.
package driven
