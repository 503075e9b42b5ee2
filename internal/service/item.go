package service

import (
	"context"

	"github.com/deppfellow/menu-api/internal/lib/job"
	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/rs/zerolog"
)

// ItemCache keeps single items close to the API. Implementations treat
// their own failures as cache misses.
//
// Delete must advance the generation reported by Generation, and
// SetIfCurrent must drop the write once the generation moved on.
type ItemCache interface {
	Get(ctx context.Context, id int64) (*model.Item, bool)
	Generation(ctx context.Context, id int64) int64
	SetIfCurrent(ctx context.Context, item *model.Item, gen int64)
	Delete(ctx context.Context, id int64)
}

// Notifier delivers item status notifications asynchronously.
type Notifier interface {
	EnqueueItemStatus(ctx context.Context, p job.ItemStatusPayload) error
}

// ItemPage is one page of a filtered item listing.
type ItemPage struct {
	Items   []model.Item
	Count   int
	Request pagination.Request
}

type ItemService struct {
	store      repository.Store
	reconciler *Reconciler
	cache      ItemCache
	notifier   Notifier
	logger     *zerolog.Logger
}

func NewItemService(store repository.Store, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:      store,
		reconciler: NewReconciler(store),
		logger:     logger,
	}
}

// WithCache enables the read-through item cache.
func (s *ItemService) WithCache(cache ItemCache) *ItemService {
	s.cache = cache
	return s
}

// WithNotifier enables status notifications after actions.
func (s *ItemService) WithNotifier(n Notifier) *ItemService {
	s.notifier = n
	return s
}

// Create stores a new item with its nested section.
func (s *ItemService) Create(ctx context.Context, req *model.CreateItemRequest) (*NestedWrite, error) {
	out, err := s.reconciler.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("item_id", out.Item.ID).
		Str("section", string(out.Outcome)).
		Msg("item created")
	return out, nil
}

// Update changes an item and reconciles its nested section.
func (s *ItemService) Update(ctx context.Context, req *model.UpdateItemRequest) (*NestedWrite, error) {
	out, err := s.reconciler.Update(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, out.Item.ID)

	s.logger.Info().
		Int64("item_id", out.Item.ID).
		Str("section", string(out.Outcome)).
		Msg("item updated")
	return out, nil
}

// Get returns one item, from the cache when possible.
func (s *ItemService) Get(ctx context.Context, id int64) (*model.Item, error) {
	if s.cache == nil {
		return s.store.GetItem(ctx, id)
	}

	if item, ok := s.cache.Get(ctx, id); ok {
		return item, nil
	}

	gen := s.cache.Generation(ctx, id)
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetIfCurrent(ctx, item, gen)
	return item, nil
}

// Delete removes an item.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.logger.Info().Int64("item_id", id).Msg("item deleted")
	return nil
}

// List returns the page of items matching req, sized by p.
func (s *ItemService) List(ctx context.Context, req *model.ListItemsRequest, p pagination.Paginator) (*ItemPage, error) {
	pageReq := p.Resolve(req.Page, req.PageSize)

	filter := req.Filter()
	filter.Limit = pageReq.Limit()
	filter.Offset = pageReq.Offset()

	items, count, err := s.store.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := pageReq.Check(count); err != nil {
		return nil, err
	}

	return &ItemPage{Items: items, Count: count, Request: pageReq}, nil
}

// ApplyAction applies a validated action to an item. Only actions listed in
// the action table change anything.
func (s *ItemService) ApplyAction(ctx context.Context, req *model.ItemActionRequest) (*model.Item, error) {
	apply, err := lookupAction(req.Action)
	if err != nil {
		return nil, err
	}

	var item *model.Item
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.GetItem(ctx, req.ID)
		if err != nil {
			return err
		}
		item, err = tx.UpdateItem(ctx, current.ID, apply(*current))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, item.ID)

	s.logger.Info().
		Int64("item_id", item.ID).
		Str("action", req.Action).
		Msg("item action applied")

	s.notify(ctx, item, req.Action)
	return item, nil
}

func (s *ItemService) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Delete(ctx, id)
	}
}

// notify queues the owner notification. Failures are logged only: the
// action itself already succeeded.
func (s *ItemService) notify(ctx context.Context, item *model.Item, action string) {
	if s.notifier == nil {
		return
	}

	payload := job.ItemStatusPayload{
		ItemID:   item.ID,
		ItemName: item.Name,
		Action:   action,
	}
	if owner, err := s.store.GetUser(ctx, item.UserID); err == nil {
		payload.To = owner.Email
	}

	if err := s.notifier.EnqueueItemStatus(ctx, payload); err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to enqueue item status notification")
	}
}
