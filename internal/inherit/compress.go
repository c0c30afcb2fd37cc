package inherit

import (
	"bytes"
	"context"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// CompressRow rewrites overrides that duplicate the canonical album value
// into inherited fields. Rows without an album reference, and rows whose
// reference dangles, pass through untouched; there is nothing to compress
// against. Row-only fields (comments, track pick) are never touched.
func CompressRow(ctx context.Context, row domain.ListRow, lookup *Lookup) (domain.ListRow, error) {
	if !row.HasAlbum() {
		return row, nil
	}

	album, err := lookup.Album(ctx, row.AlbumID)
	if err != nil {
		return domain.ListRow{}, err
	}
	if album == nil {
		return row, nil
	}

	row.Artist = compressString(row.Artist, album.Artist)
	row.AlbumTitle = compressString(row.AlbumTitle, album.Album)
	row.ReleaseDate = compressString(row.ReleaseDate, album.ReleaseDate)
	row.Country = compressString(row.Country, album.Country)
	row.Genre1 = compressString(row.Genre1, album.Genre1)
	row.Genre2 = compressString(row.Genre2, album.Genre2)
	row.Tracks = compressTracks(row.Tracks, album.Tracks)
	row.CoverImage = compressCover(row.CoverImage, album.CoverImage)
	row.CoverFormat = compressString(row.CoverFormat, album.CoverFormat)

	return row, nil
}

// CompressRows compresses a whole batch against one shared lookup.
func CompressRows(ctx context.Context, rows []domain.ListRow, lookup *Lookup) ([]domain.ListRow, error) {
	out := make([]domain.ListRow, len(rows))
	for i, row := range rows {
		compressed, err := CompressRow(ctx, row, lookup)
		if err != nil {
			return nil, err
		}
		out[i] = compressed
	}
	return out, nil
}

// ResolveRow substitutes canonical values for every inherited field. Each
// field falls back independently: a row may override genre_1 while still
// inheriting country.
func ResolveRow(ctx context.Context, row domain.ListRow, lookup *Lookup) (domain.ResolvedRow, error) {
	resolved := domain.ResolvedRow{
		ListID:    row.ListID,
		Position:  row.Position,
		AlbumID:   row.AlbumID,
		Comments:  row.Comments,
		TrackPick: row.TrackPick,
		UpdatedAt: row.UpdatedAt,
	}

	var album *domain.Album
	if row.HasAlbum() {
		var err error
		album, err = lookup.Album(ctx, row.AlbumID)
		if err != nil {
			return domain.ResolvedRow{}, err
		}
	}
	if album == nil {
		// No reference, or a dangling one: overrides are all the row has.
		album = &domain.Album{}
	}

	resolved.Artist = row.Artist.Or(album.Artist)
	resolved.Album = row.AlbumTitle.Or(album.Album)
	resolved.ReleaseDate = row.ReleaseDate.Or(album.ReleaseDate)
	resolved.Country = row.Country.Or(album.Country)
	resolved.Genre1 = row.Genre1.Or(album.Genre1)
	resolved.Genre2 = row.Genre2.Or(album.Genre2)
	resolved.Tracks = row.Tracks.Or(album.Tracks)
	resolved.CoverImage = row.CoverImage.Or(album.CoverImage)
	resolved.CoverFormat = row.CoverFormat.Or(album.CoverFormat)

	return resolved, nil
}

// ResolveRows resolves a whole batch against one shared lookup.
func ResolveRows(ctx context.Context, rows []domain.ListRow, lookup *Lookup) ([]domain.ResolvedRow, error) {
	out := make([]domain.ResolvedRow, len(rows))
	for i, row := range rows {
		resolved, err := ResolveRow(ctx, row, lookup)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// compressString compares after folding "no value" into the empty string,
// so an override of "" against an album with no value collapses to
// inherited rather than surviving as a pointless empty override.
func compressString(f domain.Field[string], canonical string) domain.Field[string] {
	v, ok := f.Value()
	if !ok {
		return f
	}
	if v == canonical {
		return domain.Inherited[string]()
	}
	return f
}

// compressTracks uses structural equality: same names, same durations,
// same order. Nil and empty both mean "no tracks".
func compressTracks(f domain.Field[[]domain.Track], canonical []domain.Track) domain.Field[[]domain.Track] {
	v, ok := f.Value()
	if !ok {
		return f
	}
	if domain.TracksEqual(v, canonical) {
		return domain.Inherited[[]domain.Track]()
	}
	return f
}

func compressCover(f domain.Field[[]byte], canonical []byte) domain.Field[[]byte] {
	v, ok := f.Value()
	if !ok {
		return f
	}
	if len(v) == 0 && len(canonical) == 0 {
		return domain.Inherited[[]byte]()
	}
	if bytes.Equal(v, canonical) {
		return domain.Inherited[[]byte]()
	}
	return f
}
