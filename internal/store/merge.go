package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/id"
)

// AffectedList identifies one list that held references to the merged
// album. Captured inside the merge transaction so the audit trail reflects
// the state the merge actually saw.
type AffectedList struct {
	ListID string `json:"list_id"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
	UserID string `json:"user_id"`
}

// MergeResult reports what a repoint changed. AffectedUsers covers everyone
// whose resolved view of the target can have changed: owners of repointed
// rows and owners of rows that already referenced the target.
type MergeResult struct {
	UpdatedRows   int
	AffectedLists []AffectedList
	AffectedUsers []string
	SourceDeleted bool
	Event         *domain.MergeEvent
}

// rowRef locates one row through the reference index.
type rowRef struct {
	listID   string
	position int
}

// RepointAlbumRefs rewrites every row referencing sourceID to reference
// targetID instead, in a single transaction. Only the album pointer
// changes; row overrides are preserved byte for byte, so a field that
// overrode the source keeps its value and a field that inherited now
// resolves against the target. The source album is deleted when it was
// manually minted, and one audit event commits with the repoint. A Badger
// write conflict surfaces as a transient CONFLICT error for the caller to
// retry.
func (s *Store) RepointAlbumRefs(_ context.Context, sourceID, targetID, actorID string) (*MergeResult, error) {
	if sourceID == "" || targetID == "" {
		return nil, domainerrors.Validation("source and target album ids are required")
	}
	if sourceID == targetID {
		return nil, domainerrors.Validation("cannot merge an album into itself")
	}

	var (
		result        MergeResult
		deindexSource bool
	)

	err := s.db.Update(func(txn *badger.Txn) error {
		// Re-verify both ends inside the transaction; whatever the caller
		// read before may be stale by now.
		var source domain.Album
		if err := getInto(txn, []byte(albumPrefix+sourceID), &source); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("source album %s: %w", sourceID, ErrAlbumNotFound)
			}
			return err
		}
		var target domain.Album
		if err := getInto(txn, []byte(albumPrefix+targetID), &target); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("target album %s: %w", targetID, ErrAlbumNotFound)
			}
			return err
		}

		refs, err := collectRowRefs(txn, sourceID)
		if err != nil {
			return err
		}

		affectedLists := make(map[string]bool)
		for _, ref := range refs {
			var row domain.ListRow
			err := getInto(txn, rowKey(ref.listID, ref.position), &row)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry; drop it and move on.
				if derr := txn.Delete(rowAlbumIndexKey(sourceID, ref.listID, ref.position)); derr != nil {
					return derr
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("get row %s:%d: %w", ref.listID, ref.position, err)
			}

			row.AlbumID = targetID

			data, err := json.Marshal(&row)
			if err != nil {
				return fmt.Errorf("marshal row %s:%d: %w", ref.listID, ref.position, err)
			}
			if err := txn.Set(rowKey(ref.listID, ref.position), data); err != nil {
				return err
			}
			if err := txn.Delete(rowAlbumIndexKey(sourceID, ref.listID, ref.position)); err != nil {
				return err
			}
			if err := txn.Set(rowAlbumIndexKey(targetID, ref.listID, ref.position), nil); err != nil {
				return err
			}

			result.UpdatedRows++
			affectedLists[ref.listID] = true
		}

		// The transaction reads its own writes, so scanning the target's
		// index here captures repointed rows and pre-existing references in
		// one pass.
		targetRefs, err := collectRowRefs(txn, targetID)
		if err != nil {
			return err
		}

		lists := make(map[string]*domain.List)
		affectedUsers := make(map[string]bool)
		for _, ref := range targetRefs {
			if _, seen := lists[ref.listID]; seen {
				continue
			}
			var list domain.List
			err := getInto(txn, []byte(listPrefix+ref.listID), &list)
			if errors.Is(err, badger.ErrKeyNotFound) {
				lists[ref.listID] = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("get list %s: %w", ref.listID, err)
			}
			lists[ref.listID] = &list
			affectedUsers[list.UserID] = true
		}

		// Manually minted albums exist only to be replaced; external IDs
		// stay because other rows or future imports may still carry them.
		if source.IsManual() {
			if err := txn.Delete([]byte(albumPrefix + sourceID)); err != nil {
				return err
			}
			result.SourceDeleted = true
			deindexSource = true
		}

		eventID, err := id.Generate(id.PrefixEvent)
		if err != nil {
			return fmt.Errorf("generate event id: %w", err)
		}
		event := &domain.MergeEvent{
			ID:                eventID,
			Type:              domain.EventTypeAlbumMerge,
			SourceID:          sourceID,
			TargetID:          targetID,
			ActorID:           actorID,
			AffectedListCount: len(affectedLists),
			Timestamp:         time.Now().UTC(),
		}
		if err := appendMergeEvent(txn, event); err != nil {
			return err
		}

		result.Event = event
		result.AffectedUsers = sortedKeys(affectedUsers)
		for _, listID := range sortedKeys(affectedLists) {
			entry := AffectedList{ListID: listID}
			// Every repointed row put its list into the target scan above;
			// a nil record means the list itself is gone.
			if list := lists[listID]; list != nil {
				entry.Name = list.Name
				entry.Year = list.Year
				entry.UserID = list.UserID
			}
			result.AffectedLists = append(result.AffectedLists, entry)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return nil, domainerrors.Conflict("merge conflicts with a concurrent write, retry").WithCause(err)
		}
		return nil, err
	}

	if deindexSource {
		s.deindexAlbumAsync(sourceID)
	}

	if s.logger != nil {
		s.logger.Info("repointed album references",
			"source_id", sourceID,
			"target_id", targetID,
			"actor_id", actorID,
			"updated_rows", result.UpdatedRows,
			"affected_lists", len(result.AffectedLists),
			"source_deleted", result.SourceDeleted)
	}

	return &result, nil
}

// collectRowRefs gathers every reference index entry for albumID within
// txn. Malformed keys are skipped; they cannot be acted on.
func collectRowRefs(txn *badger.Txn, albumID string) ([]rowRef, error) {
	var refs []rowRef
	prefix := []byte(rowAlbumIndexPrefix + albumID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		listID, position, err := parseRowAlbumIndexKey(it.Item().Key(), albumID)
		if err != nil {
			continue
		}
		refs = append(refs, rowRef{listID: listID, position: position})
	}
	return refs, nil
}
