package service

import (
	"context"
	"strings"
	"time"

	"github.com/magnusoverli/sushe-online-sub003/internal/albumkey"
	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
)

// Change is one proposed convergence: every entry in a duplicate group moves
// to the selected canonical identifier.
type Change struct {
	Artist           string                  `json:"artist"`
	Album            string                  `json:"album"`
	CanonicalAlbumID string                  `json:"canonical_album_id"`
	EntryCount       int                     `json:"entry_count"`
	AffectedEntries  []domain.DuplicateEntry `json:"affected_entries"`
}

// FixPreview reports what ExecuteFix would do, without doing any of it.
type FixPreview struct {
	ChangesRequired bool     `json:"changes_required"`
	Changes         []Change `json:"changes"`
}

// PreviewFix re-runs the duplicate scan and proposes a canonical identifier
// per group. Strictly read-only delivering a point-in-time proposal; the
// merge path re-verifies everything because previews go stale.
func (s *DedupService) PreviewFix(ctx context.Context, scopeKey string) (*FixPreview, error) {
	analysis, err := s.analyzeYear(ctx, scopeKey)
	if err != nil {
		return nil, err
	}
	return buildPreview(analysis), nil
}

func buildPreview(analysis *yearAnalysis) *FixPreview {
	preview := &FixPreview{Changes: []Change{}}

	for _, group := range analysis.groups {
		canonical := albumkey.SelectCanonical(group.AlbumIDs)

		var affected []domain.DuplicateEntry
		for _, entry := range group.Entries {
			// Entries already on the canonical ID need no rewrite, and
			// entries with no ID at all hold no reference to repoint.
			if entry.AlbumID == "" || entry.AlbumID == canonical {
				continue
			}
			affected = append(affected, entry)
		}

		preview.Changes = append(preview.Changes, Change{
			Artist:           group.Artist,
			Album:            group.Album,
			CanonicalAlbumID: canonical,
			EntryCount:       len(group.Entries),
			AffectedEntries:  affected,
		})
	}

	preview.ChangesRequired = len(preview.Changes) > 0
	return preview
}

// AuditSummary carries the headline numbers of one audit pass.
type AuditSummary struct {
	TotalAlbumsScanned    int `json:"total_albums_scanned"`
	UniqueAlbums          int `json:"unique_albums"`
	AlbumsWithMultipleIDs int `json:"albums_with_multiple_ids"`
}

// AuditReport is a point-in-time snapshot for operator review: the
// duplicate groups found in scope plus the repoints a fix pass would apply.
type AuditReport struct {
	Year        string                  `json:"year"`
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     AuditSummary            `json:"summary"`
	Duplicates  []domain.DuplicateGroup `json:"duplicates"`
	Preview     *FixPreview             `json:"preview"`
}

// GetAuditReport composes the duplicate scan and the fix preview over a
// single snapshot. Never mutates state.
func (s *DedupService) GetAuditReport(ctx context.Context, scopeKey string) (*AuditReport, error) {
	analysis, err := s.analyzeYear(ctx, scopeKey)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{
		Year:        analysis.year,
		GeneratedAt: time.Now().UTC(),
		Summary: AuditSummary{
			TotalAlbumsScanned:    analysis.scannedRows,
			UniqueAlbums:          analysis.uniqueAlbums,
			AlbumsWithMultipleIDs: len(analysis.groups),
		},
		Duplicates: analysis.groups,
		Preview:    buildPreview(analysis),
	}

	s.logger.Info("audit report generated",
		"year", analysis.year,
		"albums_scanned", analysis.scannedRows,
		"duplicate_groups", len(analysis.groups))

	return report, nil
}

// FixOutcome records one attempted repoint during ExecuteFix.
type FixOutcome struct {
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	SourceID    string `json:"source_id"`
	CanonicalID string `json:"canonical_id"`
	UpdatedRows int    `json:"updated_rows"`
	Error       string `json:"error,omitempty"`
}

// FixResult summarizes an applied fix pass.
type FixResult struct {
	Year        string       `json:"year"`
	Applied     int          `json:"applied"`
	Failed      int          `json:"failed"`
	UpdatedRows int          `json:"updated_rows"`
	Outcomes    []FixOutcome `json:"outcomes"`
}

// ExecuteFix applies the previewed repoints: every duplicate group in scope
// converges on its selected canonical identifier. Each repoint runs in its
// own transaction; a failed pair is recorded and the pass moves on, so one
// conflicted merge cannot wedge the rest of the year.
func (s *DedupService) ExecuteFix(ctx context.Context, scopeKey, actorID string) (*FixResult, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domainerrors.Validation("actor id is required")
	}

	analysis, err := s.analyzeYear(ctx, scopeKey)
	if err != nil {
		return nil, err
	}

	result := &FixResult{Year: analysis.year, Outcomes: []FixOutcome{}}
	repointed := make(map[string]bool)

	for _, group := range analysis.groups {
		canonical := albumkey.SelectCanonical(group.AlbumIDs)

		for _, sourceID := range group.AlbumIDs {
			// The same identifier can surface in several groups when row
			// overrides change how entries display; one attempt per pass.
			if sourceID == canonical || repointed[sourceID] {
				continue
			}
			repointed[sourceID] = true

			outcome := FixOutcome{
				Artist:      group.Artist,
				Album:       group.Album,
				SourceID:    sourceID,
				CanonicalID: canonical,
			}

			merged, err := s.store.RepointAlbumRefs(ctx, sourceID, canonical, actorID)
			if err != nil {
				s.logger.WithError(err).Warn("fix repoint failed",
					"source_id", sourceID,
					"canonical_id", canonical)
				outcome.Error = err.Error()
				result.Failed++
				result.Outcomes = append(result.Outcomes, outcome)
				continue
			}

			outcome.UpdatedRows = merged.UpdatedRows
			result.Applied++
			result.UpdatedRows += merged.UpdatedRows
			result.Outcomes = append(result.Outcomes, outcome)

			invalidateUsers(s.cache, cache.ReasonAlbumMerge, merged.AffectedUsers)
		}
	}

	s.logger.Info("fix pass complete",
		"year", analysis.year,
		"applied", result.Applied,
		"failed", result.Failed,
		"updated_rows", result.UpdatedRows)

	return result, nil
}
