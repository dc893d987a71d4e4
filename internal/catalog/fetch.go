package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/model"
)

// Source supplies the raw product collection for the fetch effect.
type Source interface {
	// FetchProducts retrieves the product collection. Implementations
	// return whatever the backing origin delivered; the fetch effect
	// validates the shape before it reaches the model.
	FetchProducts(ctx context.Context) ([]model.Product, error)
}

// Fetch runs the product retrieval effect: it dispatches FetchRequest,
// retrieves the collection from the source, validates it, and resolves with
// either FetchSuccess or FetchFailure. Retrieval and validation errors are
// recorded in the model, never returned or thrown. Overlapping calls are
// not coordinated; the model reflects whichever resolution lands last.
func (s *Store) Fetch(ctx context.Context) {
	s.Dispatch(FetchRequest{})

	products, err := s.source.FetchProducts(ctx)
	if err != nil {
		catalogFetchesTotal.WithLabelValues("failure").Inc()
		s.logger.Warn("product fetch failed", zap.Error(err))
		s.Dispatch(FetchFailure{Err: fmt.Sprintf("fetch products: %v", err)})

		return
	}

	if err := model.ValidateCatalog(products); err != nil {
		catalogFetchesTotal.WithLabelValues("failure").Inc()
		s.logger.Warn("product payload failed validation", zap.Error(err))
		s.Dispatch(FetchFailure{Err: fmt.Sprintf("invalid product payload: %v", err)})

		return
	}

	catalogFetchesTotal.WithLabelValues("success").Inc()
	s.logger.Info("product catalog loaded", zap.Int("count", len(products)))
	s.Dispatch(FetchSuccess{Products: products})
}
