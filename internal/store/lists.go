package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
)

// Lists live under list:<listID> with a year index at
// list:idx:year:<year>:<listID>; users live under user:<userID>. Generated
// IDs never contain ':', so the index keys parse unambiguously.
const (
	listPrefix          = "list:"
	listYearIndexPrefix = "list:idx:year:"
	userPrefix          = "user:"
)

var (
	// ErrListNotFound is returned when a list lookup misses.
	ErrListNotFound = errors.New("list not found")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
)

// listYearIndexKey builds the secondary key that groups lists by year.
func listYearIndexKey(year int, listID string) []byte {
	return []byte(fmt.Sprintf("%s%d:%s", listYearIndexPrefix, year, listID))
}

// PutList creates or replaces a list and maintains the year index.
func (s *Store) PutList(_ context.Context, list *domain.List) error {
	if list == nil || list.ID == "" {
		return domainerrors.Validation("list id is required")
	}
	if list.UserID == "" {
		return domainerrors.Validation("list user id is required")
	}
	if list.Year < 1000 || list.Year > 9999 {
		return domainerrors.Validationf("list year %d is not a 4-digit year", list.Year)
	}

	now := time.Now().UTC()

	key := buildKey(listPrefix, list.ID)
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		var old domain.List
		err := getInto(txn, key, &old)
		switch {
		case err == nil:
			list.CreatedAt = old.CreatedAt
			if old.Year != list.Year {
				if derr := txn.Delete(listYearIndexKey(old.Year, list.ID)); derr != nil {
					return derr
				}
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			if list.CreatedAt.IsZero() {
				list.CreatedAt = now
			}
		default:
			return err
		}

		list.UpdatedAt = now

		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("marshal list: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(listYearIndexKey(list.Year, list.ID), nil)
	})
	if err != nil {
		return fmt.Errorf("put list %s: %w", list.ID, err)
	}
	return nil
}

// GetList retrieves a list by ID.
func (s *Store) GetList(_ context.Context, listID string) (*domain.List, error) {
	var list domain.List

	key := buildKey(listPrefix, listID)
	defer releaseKey(key)

	err := s.get(key, &list)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list %s: %w", listID, err)
	}
	return &list, nil
}

// ListsForYear returns every list for the given year in ID order.
func (s *Store) ListsForYear(_ context.Context, year int) ([]*domain.List, error) {
	var lists []*domain.List
	prefix := []byte(fmt.Sprintf("%s%d:", listYearIndexPrefix, year))

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			listID := strings.TrimPrefix(string(it.Item().Key()), string(prefix))

			var list domain.List
			err := getInto(txn, []byte(listPrefix+listID), &list)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry, skip it.
				continue
			}
			if err != nil {
				return fmt.Errorf("get list %s: %w", listID, err)
			}
			lists = append(lists, &list)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lists for year %d: %w", year, err)
	}
	return lists, nil
}

// PutUser creates or replaces a user record.
func (s *Store) PutUser(_ context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domainerrors.Validation("user id is required")
	}
	if user.Username == "" {
		return domainerrors.Validation("username is required")
	}

	key := buildKey(userPrefix, user.ID)
	defer releaseKey(key)

	if err := s.set(key, user); err != nil {
		return fmt.Errorf("put user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, userID string) (*domain.User, error) {
	var user domain.User

	key := buildKey(userPrefix, userID)
	defer releaseKey(key)

	err := s.get(key, &user)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &user, nil
}

// GetUsersByIDs retrieves multiple users in one read transaction.
// Missing and empty IDs are skipped, not errors.
func (s *Store) GetUsersByIDs(_ context.Context, userIDs []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(userIDs))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, userID := range userIDs {
			if userID == "" {
				continue
			}

			var user domain.User
			err := getInto(txn, []byte(userPrefix+userID), &user)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get user %s: %w", userID, err)
			}
			users[userID] = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
