package catalogfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nexus-store/internal/model"
	"nexus-store/internal/repository"
	"nexus-store/internal/slug"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CategoryStore resolves feed category names to category ids.
type CategoryStore interface {
	EnsureBySlug(ctx context.Context, q repository.DBTX, name, slug string) (int64, error)
}

// ProductStore writes feed products.
type ProductStore interface {
	repository.TxBeginner
	UpsertBySKU(ctx context.Context, tx pgx.Tx, p *model.Product) (bool, error)
}

// FeedResult summarises the import of one feed.
type FeedResult struct {
	Path     string
	Inserted int
	Updated  int
	Err      error
}

// Importer loads feeds and upserts their products.
type Importer struct {
	loader     Loader
	categories CategoryStore
	products   ProductStore
	logger     zerolog.Logger
}

// NewImporter creates a new feed importer.
func NewImporter(loader Loader, categories CategoryStore, products ProductStore, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:     loader,
		categories: categories,
		products:   products,
		logger:     logger.With().Str("component", "catalog-import").Logger(),
	}
}

// Import loads every feed concurrently, then applies each one in its own
// transaction in the order given. A feed that fails to load or apply leaves
// the catalog untouched for that feed; the returned error joins all failures.
func (im *Importer) Import(ctx context.Context, paths []string) ([]FeedResult, error) {
	type loadResult struct {
		index   int
		entries []Entry
		err     error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			entries, err := im.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, entries: entries, err: err}
		}(i, path)
	}
	wg.Wait()
	close(resultChan)

	loaded := make([]loadResult, len(paths))
	for result := range resultChan {
		loaded[result.index] = result
	}

	results := make([]FeedResult, len(paths))
	var errs []error
	for i, l := range loaded {
		results[i] = FeedResult{Path: paths[i], Err: l.err}
		if l.err == nil {
			results[i].Inserted, results[i].Updated, results[i].Err = im.apply(ctx, l.entries)
		}

		if err := results[i].Err; err != nil {
			im.logger.Error().Err(err).Str("feed", paths[i]).Msg("catalog feed import failed")
			errs = append(errs, fmt.Errorf("feed %s: %w", paths[i], err))
			continue
		}
		im.logger.Info().
			Str("feed", paths[i]).
			Int("inserted", results[i].Inserted).
			Int("updated", results[i].Updated).
			Msg("catalog feed imported")
	}

	return results, errors.Join(errs...)
}

func (im *Importer) apply(ctx context.Context, entries []Entry) (inserted, updated int, err error) {
	tx, err := im.products.BeginTx(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			im.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	categoryIDs := make(map[string]int64)
	for _, e := range entries {
		s := slug.Make(e.Category)
		if s == "" {
			return 0, 0, fmt.Errorf("sku %s: category %q has no usable slug", e.SKU, e.Category)
		}
		categoryID, ok := categoryIDs[s]
		if !ok {
			if categoryID, err = im.categories.EnsureBySlug(ctx, tx, e.Category, s); err != nil {
				return 0, 0, err
			}
			categoryIDs[s] = categoryID
		}

		p := &model.Product{
			Name:          e.Name,
			Description:   e.Description,
			Price:         e.Price,
			CategoryID:    categoryID,
			StockQuantity: e.StockQuantity,
			SKU:           e.SKU,
			IsActive:      e.Active(),
			IsFeatured:    e.IsFeatured,
		}
		var created bool
		if created, err = im.products.UpsertBySKU(ctx, tx, p); err != nil {
			return 0, 0, err
		}
		if created {
			inserted++
		} else {
			updated++
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit feed: %w", err)
	}
	return inserted, updated, nil
}
