package main

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/di/providers"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/id"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
)

// seedResult reports what the seed created, with the IDs an operator needs
// to drive the other commands against the demo data.
type seedResult struct {
	UserIDs         map[string]string `json:"user_ids"`
	Albums          int               `json:"albums"`
	Lists           int               `json:"lists"`
	Rows            int               `json:"rows"`
	ManualMatched   string            `json:"manual_with_match"`
	ManualUnmatched string            `json:"manual_without_match"`
	CanonicalMatch  string            `json:"canonical_match"`
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo catalog into the store",
		Long: `Create two users with year lists that exercise every maintenance
command: a release listed under two different identifiers, a manual album
with an obvious canonical twin, and a manual album with no match at all.
Meant for empty stores; refuses to run against existing data without --force.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			storeHandle, err := do.Invoke[*providers.StoreHandle](injector)
			if err != nil {
				return err
			}

			stats, err := storeHandle.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			if stats.Albums > 0 && !force {
				return fmt.Errorf("store already holds %d albums; re-run with --force to seed anyway", stats.Albums)
			}

			result, err := seedCatalog(cmd.Context(), storeHandle.Store)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %d albums, %d lists, %d rows for %d users\n",
				result.Albums, result.Lists, result.Rows, len(result.UserIDs))
			fmt.Fprintln(out, "\nTry:")
			fmt.Fprintln(out, "  sushectl duplicates --year 1997")
			fmt.Fprintln(out, "  sushectl fix --year 1997")
			fmt.Fprintln(out, "  sushectl reconcile")
			fmt.Fprintf(out, "  sushectl merge --manual %s --canonical %s --actor %s\n",
				result.ManualMatched, result.CanonicalMatch, result.UserIDs["magnus"])
			fmt.Fprintln(out, "  sushectl search radiohead")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Seed even if the store already holds data")

	return cmd
}

func seedCatalog(ctx context.Context, st *store.Store) (*seedResult, error) {
	now := time.Now().UTC()

	magnus := &domain.User{ID: id.MustGenerate(id.PrefixUser), Username: "magnus"}
	astrid := &domain.User{ID: id.MustGenerate(id.PrefixUser), Username: "astrid"}
	for _, user := range []*domain.User{magnus, astrid} {
		if err := st.PutUser(ctx, user); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", user.Username, err)
		}
	}

	manualMgla := id.MustGenerate(id.PrefixManual)
	manualSivyj := id.MustGenerate(id.PrefixManual)
	const (
		okComputer     = "6dVIqQ8qmQ5GBnJ9shOYGE"
		okComputerDupe = "0a1f8c9d-3b42-4f6e-8a57-92cd01e3b6f4"
		homogenic      = "2Jd7nVdEqQnYHbFkQpLsAw"
		portishead     = "5x61yYRlVJSgNPmWzkjVuD"
		exercises      = "1oW3v5Har9mvXnGk0x4fHH"
	)

	albums := []*domain.Album{
		{
			ID: okComputer, Artist: "Radiohead", Album: "OK Computer",
			ReleaseDate: "1997-05-21", Country: "GB", Genre1: "Alternative Rock",
			Tracks: []domain.Track{
				{Name: "Airbag", LengthMillis: millis(284000)},
				{Name: "Paranoid Android", LengthMillis: millis(383000)},
				{Name: "Let Down", LengthMillis: millis(299000)},
			},
		},
		// Same release under a second identifier, as two catalogs would
		// hand it out. This is what 'duplicates --year 1997' finds.
		{
			ID: okComputerDupe, Artist: "Radiohead", Album: "OK Computer",
			ReleaseDate: "1997-05-21", Country: "GB", Genre1: "Alternative Rock",
		},
		{
			ID: homogenic, Artist: "Björk", Album: "Homogenic",
			ReleaseDate: "1997-09-20", Country: "IS", Genre1: "Art Pop", Genre2: "Electronic",
		},
		{
			ID: portishead, Artist: "Portishead", Album: "Portishead",
			ReleaseDate: "1997-09-29", Country: "GB", Genre1: "Trip Hop",
		},
		{
			ID: exercises, Artist: "Mgła", Album: "Exercises in Futility",
			ReleaseDate: "2015-09-04", Country: "PL", Genre1: "Black Metal",
		},
		// Hand-entered twin of the record above, the way a user beats the
		// catalog to a fresh release. 'reconcile' proposes the merge.
		{
			ID: manualMgla, Artist: "Mgła", Album: "Exercises in Futility",
			Genre1: "Black Metal",
		},
		// Hand-entered with no catalog twin; stays manual.
		{
			ID: manualSivyj, Artist: "Sivyj Yar", Album: "Burial Shrouds",
			ReleaseDate: "2015-10-02", Country: "RU", Genre1: "Black Metal",
		},
	}
	for _, album := range albums {
		if err := st.UpsertAlbum(ctx, album); err != nil {
			return nil, fmt.Errorf("seed album %s: %w", album.ID, err)
		}
	}

	lists := []struct {
		list *domain.List
		rows []domain.ListRow
	}{
		{
			list: &domain.List{ID: id.MustGenerate(id.PrefixList), UserID: magnus.ID, Name: "Magnus 1997", Year: 1997, CreatedAt: now, UpdatedAt: now},
			rows: []domain.ListRow{
				{Position: 1, AlbumID: okComputer, TrackPick: "Let Down", Comments: "desert island pick", UpdatedAt: now},
				{Position: 2, AlbumID: homogenic, UpdatedAt: now},
			},
		},
		{
			list: &domain.List{ID: id.MustGenerate(id.PrefixList), UserID: astrid.ID, Name: "Astrid 1997", Year: 1997, CreatedAt: now, UpdatedAt: now},
			rows: []domain.ListRow{
				{Position: 1, AlbumID: okComputerDupe, Comments: "on heavy rotation all autumn", UpdatedAt: now},
				{Position: 2, AlbumID: portishead, UpdatedAt: now},
			},
		},
		{
			list: &domain.List{ID: id.MustGenerate(id.PrefixList), UserID: magnus.ID, Name: "Magnus 2015", Year: 2015, CreatedAt: now, UpdatedAt: now},
			rows: []domain.ListRow{
				{Position: 1, AlbumID: manualMgla, TrackPick: "Exercises in Futility IV", UpdatedAt: now},
				{Position: 2, AlbumID: manualSivyj, UpdatedAt: now},
			},
		},
		{
			list: &domain.List{ID: id.MustGenerate(id.PrefixList), UserID: astrid.ID, Name: "Astrid 2015", Year: 2015, CreatedAt: now, UpdatedAt: now},
			rows: []domain.ListRow{
				{Position: 1, AlbumID: exercises, UpdatedAt: now},
			},
		},
	}

	result := &seedResult{
		UserIDs:         map[string]string{"magnus": magnus.ID, "astrid": astrid.ID},
		Albums:          len(albums),
		ManualMatched:   manualMgla,
		ManualUnmatched: manualSivyj,
		CanonicalMatch:  exercises,
	}
	for _, entry := range lists {
		if err := st.PutList(ctx, entry.list); err != nil {
			return nil, fmt.Errorf("seed list %s: %w", entry.list.Name, err)
		}
		if err := st.PutListRows(ctx, entry.list.ID, entry.rows); err != nil {
			return nil, fmt.Errorf("seed rows for %s: %w", entry.list.Name, err)
		}
		result.Lists++
		result.Rows += len(entry.rows)
	}

	return result, nil
}

func millis(v int64) *int64 {
	return &v
}
