// Package connectors contains fetchers for external knowledge systems.
//
// Each subpackage implements driven.Fetcher for one source: jira for
// tickets, confluence for wiki pages, stackexchange for Q&A threads.
// Fetchers retrieve a single item by reference and normalise it into a
// domain.SourceItem for the ingestion pipeline; they never write to
// the external system.
//
// This package itself holds the pieces shared across fetchers, such
// as API rate limiting.
package connectors
