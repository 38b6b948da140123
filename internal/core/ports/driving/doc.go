// Package driving provides interfaces for primary/inbound ports.
//
// These are the use-case interfaces the CLI and MCP adapters call.
// Core services implement them; adapters never reach past them into
// service internals.
package driving
