package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
	"starc/internal/domain/services"
)

// searchService implements the SearchService interface over document titles
type searchService struct {
	docRepo repositories.DocumentRepository
}

// NewSearchService creates a new title search service
func NewSearchService(docRepo repositories.DocumentRepository) services.SearchService {
	return &searchService{docRepo: docRepo}
}

// SearchTitles matches the caller's document titles against the query.
// A title matches when it contains the query as a substring, ignoring case,
// or when every stemmed query term is among the title's stemmed terms.
// An empty query matches everything.
func (s *searchService) SearchTitles(ctx context.Context, userID int64, query string) (*models.SearchResults, error) {
	docs, err := s.docRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := &models.SearchResults{
		Results:      []models.SearchResult{},
		HasDocuments: len(docs) > 0,
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	terms := stemTerms(needle)

	for _, doc := range docs {
		if !titleMatches(doc.Title, needle, terms) {
			continue
		}
		results.Results = append(results.Results, models.SearchResult{
			ID:        doc.ID,
			Title:     doc.Title,
			WordCount: doc.WordCount,
		})
	}

	return results, nil
}

func titleMatches(title, needle string, terms []string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(title), needle) {
		return true
	}
	if len(terms) == 0 {
		return false
	}

	stems := make(map[string]struct{})
	for _, stem := range stemTerms(strings.ToLower(title)) {
		stems[stem] = struct{}{}
	}
	for _, term := range terms {
		if _, ok := stems[term]; !ok {
			return false
		}
	}
	return true
}

// stemTerms splits lower-cased text into letter/digit runs and stems each
func stemTerms(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	stems := make([]string, 0, len(words))
	for _, word := range words {
		stemmed, err := snowball.Stem(word, "english", true)
		if err != nil {
			stemmed = word
		}
		stems = append(stems, stemmed)
	}
	return stems
}
