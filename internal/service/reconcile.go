package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/magnusoverli/sushe-online-sub003/internal/albumkey"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
)

// Integrity issue classification.
const (
	IssueOrphaned        = "orphaned"
	IssueMissingMetadata = "missing_metadata"
	IssueDuplicateManual = "duplicate_manual"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"

	FixDeleteReferences = "delete_references"
	FixManualReview     = "manual_review"
)

// ReconcileService proposes canonical identities for manually created
// albums and flags integrity problems in the album corpus.
type ReconcileService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(store *store.Store, log *logger.Logger) *ReconcileService {
	return &ReconcileService{store: store, logger: log}
}

// ManualUsage locates one list row referencing a manual album, for operator
// context when deciding a merge.
type ManualUsage struct {
	ListID   string `json:"list_id"`
	ListName string `json:"list_name"`
	Year     int    `json:"year"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Position int    `json:"position"`
}

// ManualMatch is one canonical album proposed as the true identity of a
// manual album. Higher confidence sorts first.
type ManualMatch struct {
	AlbumID     string `json:"album_id"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date,omitempty"`
	Country     string `json:"country,omitempty"`
	HasCover    bool   `json:"has_cover"`
	Confidence  int    `json:"confidence"`
}

// ManualAlbum is one manually created album together with where it is used
// and which canonical records look like the same release.
type ManualAlbum struct {
	ID          string        `json:"id"`
	Artist      string        `json:"artist"`
	Album       string        `json:"album"`
	ReleaseDate string        `json:"release_date,omitempty"`
	Country     string        `json:"country,omitempty"`
	HasCover    bool          `json:"has_cover"`
	UsedBy      []ManualUsage `json:"used_by"`
	Matches     []ManualMatch `json:"matches"`
}

// IntegrityIssue flags one data problem found while loading the corpus.
type IntegrityIssue struct {
	Type      string   `json:"type"`
	Severity  string   `json:"severity"`
	AlbumID   string   `json:"album_id,omitempty"`
	AlbumIDs  []string `json:"album_ids,omitempty"`
	Detail    string   `json:"detail"`
	FixAction string   `json:"fix_action,omitempty"`
}

// ReconciliationReport is the full manual reconciliation snapshot.
// TotalManual counts every manual record found, orphaned ones included;
// ManualAlbums lists only the actionable ones.
type ReconciliationReport struct {
	TotalManual          int              `json:"total_manual"`
	TotalWithMatches     int              `json:"total_with_matches"`
	ManualAlbums         []ManualAlbum    `json:"manual_albums"`
	IntegrityIssues      []IntegrityIssue `json:"integrity_issues"`
	TotalIntegrityIssues int              `json:"total_integrity_issues"`
}

// FindManualAlbums loads every manually created album, proposes canonical
// records that look like the same release, and reports integrity problems
// found along the way. Declared exclusions suppress matches in either order.
func (s *ReconcileService) FindManualAlbums(ctx context.Context) (*ReconciliationReport, error) {
	manuals, err := s.store.ListManualAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("load manual albums: %w", err)
	}
	externals, err := s.store.ListExternalAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidate albums: %w", err)
	}
	exclusions, err := s.store.Exclusions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	excluded := make(map[string]bool, len(exclusions))
	for _, pair := range exclusions {
		excluded[exclusionLookupKey(pair.AlbumID1, pair.AlbumID2)] = true
	}

	// Candidates indexed by identity key. Albums missing both identity
	// fields cannot be matched against anything.
	candidatesByKey := make(map[string][]*domain.Album)
	for _, album := range externals {
		if !album.HasIdentity() {
			continue
		}
		key := albumkey.NormalizeKey(album.Artist, album.Album)
		candidatesByKey[key] = append(candidatesByKey[key], album)
	}

	report := &ReconciliationReport{
		TotalManual:  len(manuals),
		ManualAlbums: []ManualAlbum{},
	}
	issues := []IntegrityIssue{}
	manualsByKey := make(map[string][]string)

	listCache := make(map[string]*domain.List)
	userCache := make(map[string]string)

	for _, manual := range manuals {
		if !manual.HasIdentity() {
			// Typically the residue of a dangling reference; there is no
			// record to reconcile, only references to clean up.
			issues = append(issues, IntegrityIssue{
				Type:      IssueOrphaned,
				Severity:  SeverityHigh,
				AlbumID:   manual.ID,
				Detail:    fmt.Sprintf("manual album %s has no artist or album metadata", manual.ID),
				FixAction: FixDeleteReferences,
			})
			continue
		}

		if strings.TrimSpace(manual.Artist) == "" || strings.TrimSpace(manual.Album) == "" {
			issues = append(issues, IntegrityIssue{
				Type:      IssueMissingMetadata,
				Severity:  SeverityMedium,
				AlbumID:   manual.ID,
				Detail:    fmt.Sprintf("manual album %s is missing its artist or album title", manual.ID),
				FixAction: FixManualReview,
			})
		}

		key := albumkey.NormalizeKey(manual.Artist, manual.Album)
		manualsByKey[key] = append(manualsByKey[key], manual.ID)

		usage, err := s.albumUsage(ctx, manual.ID, listCache, userCache)
		if err != nil {
			return nil, err
		}

		var matches []ManualMatch
		for _, candidate := range candidatesByKey[key] {
			if excluded[exclusionLookupKey(manual.ID, candidate.ID)] {
				continue
			}
			matches = append(matches, ManualMatch{
				AlbumID:     candidate.ID,
				Artist:      candidate.Artist,
				Album:       candidate.Album,
				ReleaseDate: candidate.ReleaseDate,
				Country:     candidate.Country,
				HasCover:    candidate.HasCover(),
				Confidence:  matchConfidence(candidate),
			})
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Confidence > matches[j].Confidence
		})

		if len(matches) > 0 {
			report.TotalWithMatches++
		}

		report.ManualAlbums = append(report.ManualAlbums, ManualAlbum{
			ID:          manual.ID,
			Artist:      manual.Artist,
			Album:       manual.Album,
			ReleaseDate: manual.ReleaseDate,
			Country:     manual.Country,
			HasCover:    manual.HasCover(),
			UsedBy:      usage,
			Matches:     matches,
		})
	}

	// Two manual albums normalizing to the same identity are themselves
	// duplicates; surface each offending set once.
	var dupKeys []string
	for key, ids := range manualsByKey {
		if len(ids) > 1 {
			dupKeys = append(dupKeys, key)
		}
	}
	sort.Strings(dupKeys)
	for _, key := range dupKeys {
		ids := manualsByKey[key]
		issues = append(issues, IntegrityIssue{
			Type:     IssueDuplicateManual,
			Severity: SeverityLow,
			AlbumIDs: ids,
			Detail:   fmt.Sprintf("%d manual albums describe the same release", len(ids)),
		})
	}

	severityRank := map[string]int{SeverityHigh: 0, SeverityMedium: 1, SeverityLow: 2}
	sort.SliceStable(issues, func(i, j int) bool {
		return severityRank[issues[i].Severity] < severityRank[issues[j].Severity]
	})
	report.IntegrityIssues = issues
	report.TotalIntegrityIssues = len(issues)

	s.logger.Info("manual reconciliation computed",
		"total_manual", report.TotalManual,
		"with_matches", report.TotalWithMatches,
		"integrity_issues", report.TotalIntegrityIssues)

	return report, nil
}

// albumUsage resolves which lists and users reference an album. Rows whose
// list record has vanished are skipped; they carry no usable attribution.
func (s *ReconcileService) albumUsage(ctx context.Context, albumID string, listCache map[string]*domain.List, userCache map[string]string) ([]ManualUsage, error) {
	rows, err := s.store.RowsReferencingAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("load rows for album %s: %w", albumID, err)
	}

	var usage []ManualUsage
	for _, row := range rows {
		list, ok := listCache[row.ListID]
		if !ok {
			var err error
			list, err = s.store.GetList(ctx, row.ListID)
			if err != nil && !errors.Is(err, store.ErrListNotFound) {
				return nil, err
			}
			listCache[row.ListID] = list
		}
		if list == nil {
			continue
		}

		username, ok := userCache[list.UserID]
		if !ok {
			user, err := s.store.GetUser(ctx, list.UserID)
			switch {
			case err == nil:
				username = user.Username
			case errors.Is(err, store.ErrUserNotFound):
				username = ""
			default:
				return nil, err
			}
			userCache[list.UserID] = username
		}

		usage = append(usage, ManualUsage{
			ListID:   row.ListID,
			ListName: list.Name,
			Year:     list.Year,
			UserID:   list.UserID,
			Username: username,
			Position: row.Position,
		})
	}
	return usage, nil
}

// matchConfidence ranks a candidate for the match list: identifier tiers
// the canonical selector would prefer score highest, then a cover art
// bonus, then a point per populated metadata field.
func matchConfidence(album *domain.Album) int {
	confidence := (5 - albumkey.Rank(album.ID)) * 10
	if album.HasCover() {
		confidence += 5
	}
	if album.ReleaseDate != "" {
		confidence++
	}
	if album.Country != "" {
		confidence++
	}
	if album.Genre1 != "" {
		confidence++
	}
	if len(album.Tracks) > 0 {
		confidence++
	}
	return confidence
}

// exclusionLookupKey builds the set-membership key for an exclusion pair,
// order independent.
func exclusionLookupKey(albumID1, albumID2 string) string {
	pair := domain.ExclusionPair{AlbumID1: albumID1, AlbumID2: albumID2}.Normalize()
	return pair.AlbumID1 + "\x00" + pair.AlbumID2
}

// AddExclusion records that two albums are different releases despite
// matching identity keys. Both must exist; the pair suppresses future match
// proposals in either order.
func (s *ReconcileService) AddExclusion(ctx context.Context, albumID1, albumID2, actorID string) error {
	if albumID1 == "" || albumID2 == "" {
		return domainerrors.Validation("both album ids are required")
	}
	if albumID1 == albumID2 {
		return domainerrors.Validation("cannot exclude an album from itself")
	}

	for _, albumID := range []string{albumID1, albumID2} {
		if _, err := s.store.GetAlbum(ctx, albumID); err != nil {
			if errors.Is(err, store.ErrAlbumNotFound) {
				return domainerrors.NotFoundf("album %s not found", albumID)
			}
			return err
		}
	}

	pair := domain.ExclusionPair{AlbumID1: albumID1, AlbumID2: albumID2, CreatedBy: actorID}
	if err := s.store.PutExclusion(ctx, pair); err != nil {
		return err
	}

	s.logger.Info("exclusion recorded",
		"album_id_1", albumID1,
		"album_id_2", albumID2,
		"actor_id", actorID)
	return nil
}

// Exclusions lists every declared exclusion pair.
func (s *ReconcileService) Exclusions(ctx context.Context) ([]domain.ExclusionPair, error) {
	return s.store.Exclusions(ctx)
}
