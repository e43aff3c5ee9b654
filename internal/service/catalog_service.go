package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
)

// catalogBackend is the subset of api.Client for browsing listings.
type catalogBackend interface {
	ListProperties(ctx context.Context, t domain.BriefType, q api.ListQuery) (*api.PropertyPage, error)
	PropertyDetail(ctx context.Context, t domain.BriefType, id string) (*api.Property, error)
	SimilarProperties(ctx context.Context, t domain.BriefType, id string) ([]api.Property, error)
}

type CatalogService struct {
	backend catalogBackend
	logger  *slog.Logger
}

func NewCatalogService(backend catalogBackend, logger *slog.Logger) *CatalogService {
	return &CatalogService{backend: backend, logger: logger}
}

func (s *CatalogService) List(ctx context.Context, t domain.BriefType, q api.ListQuery) (*api.PropertyPage, error) {
	page, err := s.backend.ListProperties(ctx, t, q)
	if err != nil {
		if isTransportFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return page, nil
}

// PropertyView is a listing with the similar listings shown beside it.
type PropertyView struct {
	Property *api.Property
	Similar  []api.Property
}

// Detail fetches a listing and its similar listings concurrently. A failure
// of the similar listings does not fail the page. If ctx is cancelled
// before both finish, the results are discarded.
func (s *CatalogService) Detail(ctx context.Context, t domain.BriefType, id string) (*PropertyView, error) {
	g, gctx := errgroup.WithContext(ctx)

	var view PropertyView
	g.Go(func() error {
		p, err := s.backend.PropertyDetail(gctx, t, id)
		if err != nil {
			return err
		}
		view.Property = p
		return nil
	})
	g.Go(func() error {
		similar, err := s.backend.SimilarProperties(gctx, t, id)
		if err != nil {
			s.logger.Warn("failed to load similar properties", "id", id, "error", err)
			return nil
		}
		view.Similar = similar
		return nil
	})

	if err := g.Wait(); err != nil {
		if isTransportFailure(err) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &view, nil
}
