package models

// SearchResult is one document matched by a title search.
type SearchResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	WordCount int    `json:"word_count"`
}

// SearchResults wraps the matches of a title search. HasDocuments is false
// when the caller owns no documents at all.
type SearchResults struct {
	Results      []SearchResult `json:"results"`
	HasDocuments bool           `json:"-"`
}
