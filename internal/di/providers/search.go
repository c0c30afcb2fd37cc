package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/config"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/search"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
)

// The store only knows the SearchIndexer seam; this is where the binding is
// checked.
var _ store.SearchIndexer = (*search.SearchIndex)(nil)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve index and binds it to the store so
// album writes are indexed as they happen.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.SearchPath(),
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Debug("search index opened", "path", cfg.SearchPath(), "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ReindexIfEmpty rebuilds the index from the store when the index is empty
// but albums exist. A mapping bump recreates the index empty; without this
// a search would silently return nothing.
func ReindexIfEmpty(i do.Injector) error {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, err := indexHandle.DocumentCount()
	if err != nil {
		return err
	}
	if docCount > 0 {
		return nil
	}

	albums, err := listAllAlbums(context.Background(), storeHandle.Store)
	if err != nil || len(albums) == 0 {
		return err
	}

	log.Info("search index is empty but albums exist, reindexing",
		"album_count", len(albums))

	docs := make([]*search.AlbumDocument, 0, len(albums))
	for _, album := range albums {
		docs = append(docs, search.AlbumToDocument(album))
	}
	if err := indexHandle.IndexDocuments(docs); err != nil {
		return err
	}

	count, _ := indexHandle.DocumentCount()
	log.Info("reindex completed", "documents", count)
	return nil
}

func listAllAlbums(ctx context.Context, st *store.Store) ([]*domain.Album, error) {
	manual, err := st.ListManualAlbums(ctx)
	if err != nil {
		return nil, err
	}
	external, err := st.ListExternalAlbums(ctx)
	if err != nil {
		return nil, err
	}
	return append(manual, external...), nil
}
