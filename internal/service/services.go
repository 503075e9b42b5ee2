// Package service contains the business logic.
//
// It sits between the handler and repository layers: handlers pass it
// validated requests, it applies the menu rules and persists through the
// repository Store.
package service

import (
	"github.com/deppfellow/menu-api/internal/lib/cache"
	"github.com/deppfellow/menu-api/internal/lib/job"
	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/deppfellow/menu-api/internal/server"
)

type Services struct {
	Auth    *AuthService
	Job     *job.JobService
	Item    *ItemService
	Section *SectionService

	// ListPaginator sizes the main item listing, SmallPaginator the
	// reduced one.
	ListPaginator  pagination.Paginator
	SmallPaginator pagination.Paginator
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	items := NewItemService(repos.Store, s.Logger)
	if s.Redis != nil {
		items.WithCache(cache.NewItemCache(s.Redis, s.Config.Cache.ItemTTL, s.Logger))
	}
	if s.Job != nil {
		items.WithNotifier(s.Job)
	}

	pcfg := s.Config.Pagination

	return &Services{
		Auth:           NewAuthService(s),
		Job:            s.Job,
		Item:           items,
		Section:        NewSectionService(repos.Store),
		ListPaginator:  pagination.New(pcfg.DefaultPageSize, pcfg.MaxPageSize),
		SmallPaginator: pagination.New(pagination.SmallPageSize, pagination.SmallPageSize),
	}, nil
}
