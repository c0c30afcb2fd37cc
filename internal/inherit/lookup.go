// Package inherit implements the per-row storage compression scheme: a row
// field equal to the referenced album's value is stored as inherited, and
// read paths substitute the album value back in. Both directions share a
// batch-scoped canonical lookup so one list save costs one fetch per album.
package inherit

import (
	"context"
	"fmt"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// Source fetches canonical albums for the compressor. Implementations
// return (nil, nil) when no album exists under the ID; errors are reserved
// for real lookup failures.
type Source interface {
	AlbumByID(ctx context.Context, id string) (*domain.Album, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, id string) (*domain.Album, error)

// AlbumByID calls the function.
func (f SourceFunc) AlbumByID(ctx context.Context, id string) (*domain.Album, error) {
	return f(ctx, id)
}

// Lookup memoizes canonical album fetches for the duration of one batch
// (one list save, one resolve pass). Callers create one per batch and
// discard or Reset it at the batch boundary; it is not a process-wide
// cache and must not be shared across concurrent batches.
type Lookup struct {
	source Source
	albums map[string]*domain.Album // nil value records a known miss
}

// NewLookup creates a batch-scoped lookup over the given source.
func NewLookup(source Source) *Lookup {
	return &Lookup{
		source: source,
		albums: make(map[string]*domain.Album),
	}
}

// Album returns the canonical album for id, hitting the source at most once
// per ID per batch. Misses are memoized too, so a dangling reference
// repeated across fifty rows costs one fetch.
func (l *Lookup) Album(ctx context.Context, id string) (*domain.Album, error) {
	if album, seen := l.albums[id]; seen {
		return album, nil
	}

	album, err := l.source.AlbumByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("canonical lookup %s: %w", id, err)
	}

	l.albums[id] = album
	return album, nil
}

// Reset clears the memo. Call at batch boundaries when reusing a Lookup.
func (l *Lookup) Reset() {
	clear(l.albums)
}
