package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	NormalizedKey string   // exact identity-key match
	Genres        []string // exact genre terms (OR across values)
	Country       string   // exact country match
	ManualOnly    bool     // restrict to hand-entered albums
	MinYear       int      // minimum release year
	MaxYear       int      // maximum release year

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "artist", "album", "year", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool     // Include facet counts in results
	FacetFields   []string // Which fields to facet on
	Highlight     bool     // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"genres", "country"},
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []AlbumHit   `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// AlbumHit is a single search result.
type AlbumHit struct {
	ID            string            `json:"id"`
	Score         float64           `json:"score"`
	Artist        string            `json:"artist"`
	Album         string            `json:"album"`
	NormalizedKey string            `json:"normalized_key,omitempty"`
	Country       string            `json:"country,omitempty"`
	Genres        []string          `json:"genres,omitempty"`
	ReleaseYear   int               `json:"release_year,omitempty"`
	Manual        bool              `json:"manual"`
	HasCover      bool              `json:"has_cover"`
	Highlights    map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Genres    []FacetCount `json:"genres,omitempty"`
	Countries []FacetCount `json:"countries,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		addFacets(searchRequest, params)
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("artist")
		searchRequest.Highlight.AddField("album")
	}

	searchRequest.Fields = []string{
		"id", "artist", "album", "normalized_key", "country", "genres",
		"release_year", "manual", "has_cover",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]AlbumHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		albumHit := AlbumHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if a, ok := hit.Fields["artist"].(string); ok {
			albumHit.Artist = a
		}
		if a, ok := hit.Fields["album"].(string); ok {
			albumHit.Album = a
		}
		if k, ok := hit.Fields["normalized_key"].(string); ok {
			albumHit.NormalizedKey = k
		}
		if c, ok := hit.Fields["country"].(string); ok {
			albumHit.Country = c
		}
		albumHit.Genres = stringValues(hit.Fields["genres"])
		if y, ok := hit.Fields["release_year"].(float64); ok {
			albumHit.ReleaseYear = int(y)
		}
		if m, ok := hit.Fields["manual"].(bool); ok {
			albumHit.Manual = m
		}
		if hc, ok := hit.Fields["has_cover"].(bool); ok {
			albumHit.HasCover = hc
		}

		if len(hit.Fragments) > 0 {
			albumHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					albumHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, albumHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// stringValues normalizes a stored field to a string slice. Bleve returns
// a bare string for single-valued fields and []any for multi-valued ones.
func stringValues(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query: title matches outrank artist matches, fuzzy
	// variants catch typos, and prefix queries serve autocomplete.
	if params.Query != "" {
		textQueries := []query.Query{}

		albumMatch := bleve.NewMatchQuery(params.Query)
		albumMatch.SetField("album")
		albumMatch.SetBoost(3.0)
		textQueries = append(textQueries, albumMatch)

		artistMatch := bleve.NewMatchQuery(params.Query)
		artistMatch.SetField("artist")
		artistMatch.SetBoost(2.0)
		textQueries = append(textQueries, artistMatch)

		fuzzyAlbum := bleve.NewFuzzyQuery(params.Query)
		fuzzyAlbum.SetFuzziness(1)
		fuzzyAlbum.SetField("album")
		fuzzyAlbum.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyAlbum)

		fuzzyArtist := bleve.NewFuzzyQuery(params.Query)
		fuzzyArtist.SetFuzziness(1)
		fuzzyArtist.SetField("artist")
		fuzzyArtist.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyArtist)

		if len(params.Query) >= 2 {
			prefixAlbum := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixAlbum.SetField("album")
			prefixAlbum.SetBoost(0.5)
			textQueries = append(textQueries, prefixAlbum)

			prefixArtist := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixArtist.SetField("artist")
			prefixArtist.SetBoost(0.5)
			textQueries = append(textQueries, prefixArtist)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Identity key filter (exact)
	if params.NormalizedKey != "" {
		keyQuery := bleve.NewTermQuery(params.NormalizedKey)
		keyQuery.SetField("normalized_key")
		queries = append(queries, keyQuery)
	}

	// Genre filter (exact match, OR across values)
	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, genre := range params.Genres {
			gq := bleve.NewTermQuery(genre)
			gq.SetField("genres")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	// Country filter (exact)
	if params.Country != "" {
		countryQuery := bleve.NewTermQuery(params.Country)
		countryQuery.SetField("country")
		queries = append(queries, countryQuery)
	}

	// Manual filter
	if params.ManualOnly {
		manualQuery := bleve.NewBoolFieldQuery(true)
		manualQuery.SetField("manual")
		queries = append(queries, manualQuery)
	}

	// Release year range filter
	if params.MinYear > 0 || params.MaxYear > 0 {
		min := float64(params.MinYear)
		max := float64(params.MaxYear)
		if params.MaxYear == 0 {
			max = 3000 // Far future
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("release_year")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "artist":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-artist", "-album"})
		} else {
			req.SortBy([]string{"artist", "album"})
		}
	case "album", "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-album"})
		} else {
			req.SortBy([]string{"album"})
		}
	case "year":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"release_year"})
		} else {
			req.SortBy([]string{"-release_year"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is the default.
		req.SortBy([]string{"-_score"})
	}
}

// addFacets configures facet requests.
func addFacets(req *bleve.SearchRequest, params SearchParams) {
	for _, field := range params.FacetFields {
		facetReq := bleve.NewFacetRequest(field, 20) // Top 20 values
		req.AddFacet(field, facetReq)
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if genreFacet, ok := result.Facets["genres"]; ok {
		for _, term := range genreFacet.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if countryFacet, ok := result.Facets["country"]; ok {
		for _, term := range countryFacet.Terms.Terms() {
			facets.Countries = append(facets.Countries, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
