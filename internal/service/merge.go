package service

import (
	"context"
	"errors"
	"strings"

	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
	"github.com/magnusoverli/sushe-online-sub003/internal/validation"
)

// MergeService folds manually created albums into canonical catalog records.
type MergeService struct {
	store     *store.Store
	cache     CacheEmitter
	validator *validation.Validator
	logger    *logger.Logger
}

// NewMergeService creates a new merge service. cache may be nil when no
// response cache is wired in.
func NewMergeService(store *store.Store, cache CacheEmitter, validator *validation.Validator, log *logger.Logger) *MergeService {
	return &MergeService{
		store:     store,
		cache:     cache,
		validator: validator,
		logger:    log,
	}
}

// MergeRequest asks for one manual album to be folded into a canonical one.
type MergeRequest struct {
	ManualID     string `json:"manual_id" validate:"required"`
	CanonicalID  string `json:"canonical_id" validate:"required,nefield=ManualID"`
	SyncMetadata bool   `json:"sync_metadata"`
	AdminUserID  string `json:"admin_user_id" validate:"required"`
}

// CanonicalSnapshot echoes the canonical album's metadata at merge time for
// the caller's audit payload. The merge never mutates the canonical row.
type CanonicalSnapshot struct {
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date,omitempty"`
	Country     string `json:"country,omitempty"`
	Genre1      string `json:"genre_1,omitempty"`
	Genre2      string `json:"genre_2,omitempty"`
	HasCover    bool   `json:"has_cover"`
}

// MergeOutcome reports a committed merge.
type MergeOutcome struct {
	Success          bool                 `json:"success"`
	UpdatedListItems int                  `json:"updated_list_items"`
	AffectedLists    []store.AffectedList `json:"affected_lists"`
	Event            *domain.MergeEvent   `json:"event"`
	Canonical        *CanonicalSnapshot   `json:"canonical,omitempty"`
}

// MergeManualAlbum rewrites every reference to a manual album over to a
// canonical one, deletes the manual record, and commits an audit event, all
// inside one transaction. Preconditions are checked up front so callers get
// precise errors; the transaction re-verifies both ends anyway, which is
// what makes acting on a stale preview safe.
func (s *MergeService) MergeManualAlbum(ctx context.Context, req MergeRequest) (*MergeOutcome, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(req.ManualID, domain.ManualIDPrefix) {
		return nil, domainerrors.Validationf("invalid manual album ID %s", req.ManualID)
	}

	if _, err := s.store.GetAlbum(ctx, req.ManualID); err != nil {
		if errors.Is(err, store.ErrAlbumNotFound) {
			return nil, domainerrors.Validationf("invalid manual album ID %s: no such album", req.ManualID)
		}
		return nil, err
	}

	target, err := s.store.GetAlbum(ctx, req.CanonicalID)
	if err != nil {
		if errors.Is(err, store.ErrAlbumNotFound) {
			return nil, domainerrors.NotFoundf("canonical album %s not found", req.CanonicalID)
		}
		return nil, err
	}

	result, err := s.store.RepointAlbumRefs(ctx, req.ManualID, req.CanonicalID, req.AdminUserID)
	if err != nil {
		if errors.Is(err, store.ErrAlbumNotFound) {
			// Lost a race with a concurrent merge or delete between the
			// precondition reads and the transaction.
			return nil, domainerrors.Wrap(err, domainerrors.CodeNotFound, "album disappeared before the merge committed")
		}
		return nil, err
	}

	invalidateUsers(s.cache, cache.ReasonAlbumMerge, result.AffectedUsers)

	outcome := &MergeOutcome{
		Success:          true,
		UpdatedListItems: result.UpdatedRows,
		AffectedLists:    result.AffectedLists,
		Event:            result.Event,
	}
	if req.SyncMetadata {
		outcome.Canonical = &CanonicalSnapshot{
			Artist:      target.Artist,
			Album:       target.Album,
			ReleaseDate: target.ReleaseDate,
			Country:     target.Country,
			Genre1:      target.Genre1,
			Genre2:      target.Genre2,
			HasCover:    target.HasCover(),
		}
	}

	s.logger.Info("manual album merged",
		"manual_id", req.ManualID,
		"canonical_id", req.CanonicalID,
		"actor_id", req.AdminUserID,
		"updated_rows", result.UpdatedRows,
		"affected_lists", len(result.AffectedLists))

	return outcome, nil
}

// MergeHistory returns the append-only merge audit log, oldest first.
func (s *MergeService) MergeHistory(ctx context.Context) ([]domain.MergeEvent, error) {
	return s.store.ListMergeEvents(ctx)
}
