package docs

import (
	"slices"
	"strings"
)

// Search finds documents matching the query. Matching is
// case-insensitive against ID, title, and description; an empty query
// returns everything. Results are ordered by match quality (exact ID >
// ID prefix > ID contains > title contains > description-only).
func (c *Catalog) Search(query string) []Document {
	query = strings.ToLower(query)

	var results []Document
	for _, doc := range c.docs {
		if query == "" || matchesQuery(doc, query) {
			results = append(results, doc)
		}
	}

	slices.SortStableFunc(results, func(a, b Document) int {
		return scoreMatch(b, query) - scoreMatch(a, query)
	})
	return results
}

func matchesQuery(doc Document, query string) bool {
	return strings.Contains(strings.ToLower(doc.ID), query) ||
		strings.Contains(strings.ToLower(doc.Title), query) ||
		strings.Contains(strings.ToLower(doc.Description), query)
}

// scoreMatch rates match quality; higher is better.
func scoreMatch(doc Document, query string) int {
	if query == "" {
		return 0
	}

	id := strings.ToLower(doc.ID)
	base := id
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		base = id[i+1:]
	}

	switch {
	case id == query || base == query:
		return 100
	case strings.HasPrefix(base, query):
		return 75
	case strings.Contains(id, query):
		return 50
	case strings.Contains(strings.ToLower(doc.Title), query):
		return 40
	case strings.Contains(strings.ToLower(doc.Description), query):
		return 25
	}
	return 0
}
