// Package vector declares the embedding/semantic-search collaborator
// consumed downstream of the engine. The engine only defines the contract;
// a concrete backend plugs in behind it.
package vector

import (
	"context"

	"jobscout-engine/internal/domain"
)

// Match is one semantic-search hit.
type Match struct {
	Listing    domain.JobListing
	Similarity float64
}

// Index stores listings for semantic retrieval and answers free-text
// queries with ranked matches.
type Index interface {
	// Store embeds and persists one listing, returning its backend id.
	Store(ctx context.Context, l domain.JobListing) (string, error)

	// Query returns up to k listings ranked by similarity to the text.
	Query(ctx context.Context, text string, k int) ([]Match, error)
}
