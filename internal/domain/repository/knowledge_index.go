package repository

import "github.com/navellino/concierge-backend/internal/domain/entity"

// KnowledgeIndex exposes the parsed knowledge file. The index is built
// once at startup and immutable afterwards; changing the file requires
// a restart.
type KnowledgeIndex interface {
	// FindSection returns the most specific section for the given
	// name, preferring (name, property, lang), then (name, property),
	// then name alone.
	FindSection(name, propertyID, lang string) (entity.Section, bool)

	// SnippetsFor returns up to topK section bodies relevant to the
	// query, scoped to the property (or property-agnostic sections)
	// and the exact lang, ordered by descending relevance.
	SnippetsFor(query, propertyID, lang string, topK int) []string
}
