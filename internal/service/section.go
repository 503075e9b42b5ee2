package service

import (
	"context"

	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
)

type SectionService struct {
	store      repository.Store
	reconciler *Reconciler
}

func NewSectionService(store repository.Store) *SectionService {
	return &SectionService{store: store, reconciler: NewReconciler(store)}
}

// Create stores a section that is not attached to any item yet.
func (s *SectionService) Create(ctx context.Context, req *model.CreateSectionRequest) (*model.Section, error) {
	return s.reconciler.CreateSection(ctx, req.Fields())
}

func (s *SectionService) Get(ctx context.Context, id int64) (*model.Section, error) {
	return s.store.GetSection(ctx, id)
}
