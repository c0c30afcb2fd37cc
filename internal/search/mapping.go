package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for album documents.
//
// Priorities:
//  1. Fast full-text search on artist and title with English stemming
//  2. Exact term matching on identity keys, countries and genres
//  3. Boolean filters for manual records and cover presence
//  4. Numeric range queries on release year
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	artistFieldMapping := bleve.NewTextFieldMapping()
	artistFieldMapping.Analyzer = en.AnalyzerName
	artistFieldMapping.Store = true
	artistFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("artist", artistFieldMapping)

	albumFieldMapping := bleve.NewTextFieldMapping()
	albumFieldMapping.Analyzer = en.AnalyzerName
	albumFieldMapping.Store = true
	albumFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("album", albumFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Identity key: one term query returns every album describing the
	// same release.
	keyFieldMapping := bleve.NewTextFieldMapping()
	keyFieldMapping.Analyzer = keyword.Name
	keyFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("normalized_key", keyFieldMapping)

	countryFieldMapping := bleve.NewTextFieldMapping()
	countryFieldMapping.Analyzer = keyword.Name
	countryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("country", countryFieldMapping)

	// Keyword analyzer keeps multi-word genres intact ("Black Metal").
	genresFieldMapping := bleve.NewTextFieldMapping()
	genresFieldMapping.Analyzer = keyword.Name
	genresFieldMapping.Store = true
	genresFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("genres", genresFieldMapping)

	// --- Boolean filters ---

	manualFieldMapping := bleve.NewBooleanFieldMapping()
	manualFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("manual", manualFieldMapping)

	coverFieldMapping := bleve.NewBooleanFieldMapping()
	coverFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("has_cover", coverFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("release_year", yearFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
