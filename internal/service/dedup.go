package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/magnusoverli/sushe-online-sub003/internal/albumkey"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
	"github.com/magnusoverli/sushe-online-sub003/internal/validation"
)

// DedupService finds album identities that drifted across multiple
// identifiers and previews or applies the repoints that converge them.
type DedupService struct {
	store     *store.Store
	cache     CacheEmitter
	validator *validation.Validator
	logger    *logger.Logger
}

// NewDedupService creates a new dedup service. cache may be nil when no
// response cache is wired in.
func NewDedupService(store *store.Store, cache CacheEmitter, validator *validation.Validator, log *logger.Logger) *DedupService {
	return &DedupService{
		store:     store,
		cache:     cache,
		validator: validator,
		logger:    log,
	}
}

// scanScope is the validated shape of a scope key. Unscoped scans are
// disallowed, so the zero value never validates.
type scanScope struct {
	Year string `json:"year" validate:"required,year"`
}

// parseScope checks a scope key and returns it as a list year.
func (s *DedupService) parseScope(scopeKey string) (int, string, error) {
	scope := scanScope{Year: strings.TrimSpace(scopeKey)}
	if err := s.validator.Validate(&scope); err != nil {
		return 0, "", err
	}

	year, err := strconv.Atoi(scope.Year)
	if err != nil {
		return 0, "", domainerrors.Validationf("scope key %q is not a year", scopeKey)
	}
	return year, scope.Year, nil
}

// DuplicateReport is the duplicate finder result for one year of lists.
type DuplicateReport struct {
	Year            string                  `json:"year"`
	DuplicateGroups int                     `json:"duplicate_groups"`
	Duplicates      []domain.DuplicateGroup `json:"duplicates"`
	UniqueAlbums    int                     `json:"unique_albums"`
}

// FindDuplicates scans one year of lists across all users and reports every
// album identity that appears under more than one identifier.
func (s *DedupService) FindDuplicates(ctx context.Context, scopeKey string) (*DuplicateReport, error) {
	analysis, err := s.analyzeYear(ctx, scopeKey)
	if err != nil {
		return nil, err
	}

	s.logger.Info("duplicate scan complete",
		"year", analysis.year,
		"rows", analysis.scannedRows,
		"unique_albums", analysis.uniqueAlbums,
		"duplicate_groups", len(analysis.groups))

	return &DuplicateReport{
		Year:            analysis.year,
		DuplicateGroups: len(analysis.groups),
		Duplicates:      analysis.groups,
		UniqueAlbums:    analysis.uniqueAlbums,
	}, nil
}

// keyGroup accumulates the scanned rows sharing one normalized identity key.
type keyGroup struct {
	newest   store.ScannedRow
	entries  []domain.DuplicateEntry
	idOrder  []string
	idNewest map[string]time.Time
}

// yearAnalysis is one grouping pass over a year's rows. The duplicate
// finder and the audit engine both read it so their numbers come from the
// same snapshot.
type yearAnalysis struct {
	year         string
	scannedRows  int
	uniqueAlbums int
	groups       []domain.DuplicateGroup
}

// analyzeYear scans a year and groups every row by its normalized identity
// key. Groups surface in first-appearance order; within a group the
// identifier written most recently leads, so selector ties resolve toward
// the freshest reference.
func (s *DedupService) analyzeYear(ctx context.Context, scopeKey string) (*yearAnalysis, error) {
	year, scope, err := s.parseScope(scopeKey)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ScanYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("scan rows for %s: %w", scope, err)
	}

	byKey := make(map[string]*keyGroup)
	var keyOrder []string
	skipped := 0

	for _, row := range rows {
		if strings.TrimSpace(row.Artist) == "" && strings.TrimSpace(row.Album) == "" {
			// Nothing to match on; the reconciliation integrity scan owns
			// rows like this.
			skipped++
			continue
		}

		key := albumkey.NormalizeKey(row.Artist, row.Album)
		group, ok := byKey[key]
		if !ok {
			group = &keyGroup{newest: row, idNewest: make(map[string]time.Time)}
			byKey[key] = group
			keyOrder = append(keyOrder, key)
		} else if !row.RowUpdatedAt.Before(group.newest.RowUpdatedAt) {
			group.newest = row
		}

		group.entries = append(group.entries, domain.DuplicateEntry{
			AlbumID:  row.AlbumID,
			UserID:   row.UserID,
			Username: row.Username,
			ListID:   row.ListID,
			ListName: row.ListName,
			Position: row.Position,
		})

		if row.AlbumID != "" {
			seen, ok := group.idNewest[row.AlbumID]
			switch {
			case !ok:
				group.idOrder = append(group.idOrder, row.AlbumID)
				group.idNewest[row.AlbumID] = row.RowUpdatedAt
			case row.RowUpdatedAt.After(seen):
				group.idNewest[row.AlbumID] = row.RowUpdatedAt
			}
		}
	}

	analysis := &yearAnalysis{
		year:         scope,
		scannedRows:  len(rows) - skipped,
		uniqueAlbums: len(keyOrder),
		groups:       []domain.DuplicateGroup{},
	}

	for _, key := range keyOrder {
		group := byKey[key]
		if len(group.idOrder) < 2 {
			continue
		}

		ids := append([]string(nil), group.idOrder...)
		sort.SliceStable(ids, func(i, j int) bool {
			return group.idNewest[ids[i]].After(group.idNewest[ids[j]])
		})

		analysis.groups = append(analysis.groups, domain.DuplicateGroup{
			NormalizedKey: key,
			Artist:        group.newest.Artist,
			Album:         group.newest.Album,
			AlbumIDs:      ids,
			Entries:       group.entries,
		})
	}

	return analysis, nil
}
