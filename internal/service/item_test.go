package service

import (
	"context"
	"sync"
	"testing"

	"github.com/deppfellow/menu-api/internal/lib/job"
	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu    sync.Mutex
	items map[int64]model.Item
	gens  map[int64]int64
	gets  int
}

func newMemCache() *memCache {
	return &memCache{items: map[int64]model.Item{}, gens: map[int64]int64{}}
}

func (c *memCache) Get(_ context.Context, id int64) (*model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	it, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return &it, true
}

func (c *memCache) Generation(_ context.Context, id int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id]
}

func (c *memCache) SetIfCurrent(_ context.Context, item *model.Item, gen int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[item.ID] == gen {
		c.items[item.ID] = *item
	}
}

func (c *memCache) Delete(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.gens[id]++
}

func (c *memCache) cached(id int64) (model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	return it, ok
}

// writeDuringRead runs onRead once, right after GetItem has read its row
// and before the caller sees it.
type writeDuringRead struct {
	repository.Store
	onRead func()
}

func (s *writeDuringRead) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.Store.GetItem(ctx, id)
	if s.onRead != nil {
		fn := s.onRead
		s.onRead = nil
		fn()
	}
	return it, err
}

type recordingNotifier struct {
	payloads []job.ItemStatusPayload
}

func (n *recordingNotifier) EnqueueItemStatus(_ context.Context, p job.ItemStatusPayload) error {
	n.payloads = append(n.payloads, p)
	return nil
}

func newItemService(f *fixture) *ItemService {
	logger := zerolog.Nop()
	return NewItemService(f.store, &logger)
}

func TestApplyAction_UnarchiveClearsFlagAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := &recordingNotifier{}
	c := newMemCache()
	svc := newItemService(f).WithNotifier(n).WithCache(c)

	item, err := f.store.CreateItem(ctx, model.ItemFields{Name: "Pie", UserID: f.owner.ID, ArchiveStatus: true})
	require.NoError(t, err)
	c.SetIfCurrent(ctx, item, c.Generation(ctx, item.ID))

	req := &model.ItemActionRequest{ID: item.ID, Action: "unarchive"}
	require.NoError(t, req.Validate())

	updated, err := svc.ApplyAction(ctx, req)
	require.NoError(t, err)
	assert.False(t, updated.ArchiveStatus)

	_, cached := c.Get(ctx, item.ID)
	assert.False(t, cached, "cache entry must be invalidated")

	require.Len(t, n.payloads, 1)
	assert.Equal(t, job.ItemStatusPayload{ItemID: item.ID, ItemName: "Pie", Action: "unarchive", To: "owner@example.com"}, n.payloads[0])
}

func TestApplyAction_DeleteNeverMutates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := &recordingNotifier{}
	svc := newItemService(f).WithNotifier(n)

	item, err := f.store.CreateItem(ctx, model.ItemFields{Name: "Pie", UserID: f.owner.ID, ArchiveStatus: true})
	require.NoError(t, err)

	req := &model.ItemActionRequest{ID: item.ID, Action: "delete"}
	assert.Error(t, req.Validate())

	_, err = svc.ApplyAction(ctx, req)
	msg, ok := httpError(t, err).FieldMessage("action")
	require.True(t, ok)
	assert.Equal(t, "delete is not allowed", msg)

	stored, err := f.store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, stored.ArchiveStatus)
	assert.Empty(t, n.payloads)
}

func TestApplyAction_UnknownAction(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)

	_, err := svc.ApplyAction(context.Background(), &model.ItemActionRequest{ID: 1, Action: "archive"})
	msg, _ := httpError(t, err).FieldMessage("action")
	assert.Equal(t, "unknown action", msg)
}

func TestGet_ReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newMemCache()
	svc := newItemService(f).WithCache(c)

	item, err := f.store.CreateItem(ctx, model.ItemFields{Name: "Pie", UserID: f.owner.ID})
	require.NoError(t, err)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pie", got.Name)

	require.NoError(t, f.store.DeleteItem(ctx, item.ID))

	got, err = svc.Get(ctx, item.ID)
	require.NoError(t, err, "second read is served from the cache")
	assert.Equal(t, item.ID, got.ID)
}

func TestGet_DoesNotCacheRowReadBeforeConcurrentUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newMemCache()
	logger := zerolog.Nop()

	item, err := f.store.CreateItem(ctx, model.ItemFields{Name: "Pie", UserID: f.owner.ID})
	require.NoError(t, err)

	store := &writeDuringRead{Store: f.store}
	svc := NewItemService(store, &logger).WithCache(c)
	store.onRead = func() {
		_, err := f.store.UpdateItem(ctx, item.ID, model.ItemPatch{Name: model.String("Tart")})
		require.NoError(t, err)
		c.Delete(ctx, item.ID)
	}

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pie", got.Name)

	_, ok := c.cached(item.ID)
	assert.False(t, ok, "stale row must not be cached")

	got, err = svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tart", got.Name)

	cachedItem, ok := c.cached(item.ID)
	require.True(t, ok)
	assert.Equal(t, "Tart", cachedItem.Name)
}

func TestDelete_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newMemCache()
	svc := newItemService(f).WithCache(c)

	item, err := f.store.CreateItem(ctx, model.ItemFields{Name: "Pie", UserID: f.owner.ID})
	require.NoError(t, err)
	_, err = svc.Get(ctx, item.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))

	_, err = svc.Get(ctx, item.ID)
	assert.Error(t, err)
}

func seedRatings(t *testing.T, f *fixture, ratings ...float64) {
	t.Helper()
	for i, r := range ratings {
		_, err := f.store.CreateItem(context.Background(), model.ItemFields{
			Name:   "Dish " + string(rune('A'+i)),
			Rating: r,
			UserID: f.owner.ID,
		})
		require.NoError(t, err)
	}
}

func TestList_GoodRatingFilter(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	seedRatings(t, f, 2, 3, 4, 5, 6, 2.9, 5.1)

	page, err := svc.List(context.Background(), &model.ListItemsRequest{GoodRatingFilter: "true"}, pagination.New(20, 100))
	require.NoError(t, err)

	assert.Equal(t, 3, page.Count)
	for _, it := range page.Items {
		assert.GreaterOrEqual(t, it.Rating, 3.0)
		assert.LessOrEqual(t, it.Rating, 5.0)
	}

	page, err = svc.List(context.Background(), &model.ListItemsRequest{GoodRatingFilter: "false"}, pagination.New(20, 100))
	require.NoError(t, err)
	assert.Equal(t, 7, page.Count)
}

func TestList_SmallPaginatorCapsPageSize(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	seedRatings(t, f, 1, 2, 3, 4, 5)

	small := pagination.New(2, 2)
	for _, size := range []int{0, 1, 2, 3, 100} {
		page, err := svc.List(context.Background(), &model.ListItemsRequest{PageSize: size}, small)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 2, "page_size=%d", size)
		assert.Equal(t, 5, page.Count)
	}

	page, err := svc.List(context.Background(), &model.ListItemsRequest{Page: 3, PageSize: 50}, small)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestList_PageOutOfRange(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	seedRatings(t, f, 1, 2, 3)

	_, err := svc.List(context.Background(), &model.ListItemsRequest{Page: 5}, pagination.New(2, 2))
	httpErr := httpError(t, err)
	assert.Equal(t, 404, httpErr.Status)
	assert.Equal(t, "Invalid page.", httpErr.Message)
}
