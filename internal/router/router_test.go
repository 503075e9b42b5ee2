package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/deppfellow/menu-api/internal/config"
	"github.com/deppfellow/menu-api/internal/handler"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/deppfellow/menu-api/internal/router"
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/deppfellow/menu-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine     *echo.Echo
	store      repository.Store
	user       *model.User
	restaurant *model.Restaurant
}

func setup(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Primary:       config.Primary{Env: "test"},
		Server:        config.ServerConfig{Port: "0", ReadTimeout: 5, WriteTimeout: 5, IdleTimeout: 5},
		Store:         config.StoreConfig{Driver: config.StoreDriverMemory},
		Pagination:    config.DefaultPaginationConfig(),
		Observability: config.DefaultObservabilityConfig(),
	}
	logger := zerolog.Nop()
	srv := &server.Server{Config: cfg, Logger: &logger}

	repos, err := repository.NewRepositories(srv)
	require.NoError(t, err)
	services, err := service.NewService(srv, repos)
	require.NoError(t, err)

	ctx := context.Background()
	user, err := repos.Store.CreateUser(ctx, "owner@menu.local", "Owner")
	require.NoError(t, err)
	restaurant, err := repos.Store.CreateRestaurant(ctx, "Bistro", model.Int64(user.ID))
	require.NoError(t, err)

	return &fixture{
		engine:     router.NewRouter(srv, handler.NewHandlers(srv, services), services),
		store:      repos.Store,
		user:       user,
		restaurant: restaurant,
	}
}

// r returns a fresh request builder. gofight keeps the body and headers of
// the previous call on a reused builder.
func (f *fixture) r() *gofight.RequestConfig {
	return gofight.New()
}

type nestedItem struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Rating         float64        `json:"rating"`
	ArchiveStatus  bool           `json:"archive_status"`
	SectionID      *int64         `json:"section_id"`
	UserID         int64          `json:"user_id"`
	User           *string        `json:"user"`
	Section        *model.Section `json:"section"`
	SectionOutcome string         `json:"section_outcome"`
}

type itemPage struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []nestedItem `json:"results"`
}

type errorBody struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
	Errors []struct {
		Field string `json:"field"`
		Error string `json:"error"`
	} `json:"errors"`
}

func (e errorBody) field(name string) string {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe.Error
		}
	}
	return ""
}

func decode[T any](t *testing.T, res gofight.HTTPResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &v), res.Body.String())
	return v
}

func (f *fixture) createItem(t *testing.T, body gofight.D) nestedItem {
	t.Helper()
	var out nestedItem
	f.r().POST("/api/v1/item").SetJSON(body).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
		out = decode[nestedItem](t, res)
	})
	return out
}

func TestCreateItem_InjectsItemOwnerIntoSection(t *testing.T) {
	f := setup(t)

	item := f.createItem(t, gofight.D{
		"name":    "Soup",
		"rating":  4,
		"user_id": f.user.ID,
		"section": gofight.D{"name": "Starters", "restaurant_id": f.restaurant.ID},
	})

	require.NotNil(t, item.Section)
	assert.Equal(t, f.user.ID, item.Section.UserID)
	assert.Equal(t, "created", item.SectionOutcome)
	require.NotNil(t, item.SectionID)
	assert.Equal(t, item.Section.ID, *item.SectionID)
	assert.Nil(t, item.User)
}

func TestCreateItem_OverridesSuppliedSectionOwner(t *testing.T) {
	f := setup(t)
	other, err := f.store.CreateUser(context.Background(), "other@menu.local", "Other")
	require.NoError(t, err)

	item := f.createItem(t, gofight.D{
		"name":    "Soup",
		"user_id": f.user.ID,
		"section": gofight.D{"name": "Starters", "restaurant_id": f.restaurant.ID, "user_id": other.ID},
	})

	stored, err := f.store.GetSection(context.Background(), item.Section.ID)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, stored.UserID)
}

func TestCreateItem_NestedErrorsAreReported(t *testing.T) {
	f := setup(t)

	f.r().POST("/api/v1/item").
		SetJSON(gofight.D{
			"name":    "Soup",
			"user_id": f.user.ID,
			"section": gofight.D{"restaurant_id": 999},
		}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
			body := decode[errorBody](t, res)
			assert.Equal(t, "is required", body.field("section.name"))
		})

	f.r().POST("/api/v1/item").
		SetJSON(gofight.D{
			"name":    "Soup",
			"user_id": f.user.ID,
			"section": gofight.D{"name": "Starters", "restaurant_id": 999},
		}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
			body := decode[errorBody](t, res)
			assert.Equal(t, `Invalid pk "999" - object does not exist.`, body.field("section.restaurant_id"))
		})

	_, count, err := f.store.ListItems(context.Background(), model.ItemFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateItem_PatchesSectionInPlace(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, gofight.D{
		"name":    "Soup",
		"user_id": f.user.ID,
		"section": gofight.D{"name": "Starters", "restaurant_id": f.restaurant.ID},
	})

	f.r().PUT(fmt.Sprintf("/api/v1/item/%d", item.ID)).
		SetJSON(gofight.D{
			"name":    "Soup of the day",
			"user_id": f.user.ID,
			"section": gofight.D{"name": "Soups"},
		}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			out := decode[nestedItem](t, res)
			assert.Equal(t, item.ID, out.ID)
			assert.Equal(t, "Soup of the day", out.Name)
			assert.Equal(t, "updated", out.SectionOutcome)
			assert.Equal(t, item.Section.ID, out.Section.ID)
			assert.Equal(t, "Soups", out.Section.Name)
		})
}

func TestUpdateItem_CreatesMissingSection(t *testing.T) {
	f := setup(t)
	orphan, err := f.store.CreateItem(context.Background(), model.ItemFields{Name: "Bread", UserID: f.user.ID})
	require.NoError(t, err)

	f.r().PUT(fmt.Sprintf("/api/v1/item/%d/", orphan.ID)).
		SetJSON(gofight.D{
			"name":    "Bread",
			"user_id": f.user.ID,
			"section": gofight.D{"name": "Sides", "restaurant_id": f.restaurant.ID},
		}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			out := decode[nestedItem](t, res)
			assert.Equal(t, "created", out.SectionOutcome)
			require.NotNil(t, out.SectionID)
			assert.Equal(t, out.Section.ID, *out.SectionID)
			assert.Equal(t, f.user.ID, out.Section.UserID)
		})
}

func TestItemAction(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, gofight.D{
		"name":           "Soup",
		"archive_status": true,
		"user_id":        f.user.ID,
		"section":        gofight.D{"name": "Starters", "restaurant_id": f.restaurant.ID},
	})
	path := fmt.Sprintf("/api/v1/item_action/%d", item.ID)

	f.r().GET(path).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"id":%d}`, item.ID), res.Body.String())
	})

	f.r().POST(path).SetJSON(gofight.D{"action": "delete"}).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "delete is not allowed", decode[errorBody](t, res).field("action"))
	})

	f.r().POST(path).SetJSON(gofight.D{"action": "promote"}).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "unknown action", decode[errorBody](t, res).field("action"))
	})

	stored, err := f.store.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, stored.ArchiveStatus)

	f.r().POST(path).SetJSON(gofight.D{"action": "unarchive"}).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"id":%d}`, item.ID), res.Body.String())
	})

	stored, err = f.store.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, stored.ArchiveStatus)
}

func TestItemAction_UnknownItem(t *testing.T) {
	f := setup(t)

	f.r().GET("/api/v1/item_action/42").Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func seedRatings(t *testing.T, f *fixture, ratings ...float64) {
	t.Helper()
	for i, rating := range ratings {
		_, err := f.store.CreateItem(context.Background(), model.ItemFields{
			Name:   fmt.Sprintf("Dish %d", i),
			Rating: rating,
			UserID: f.user.ID,
		})
		require.NoError(t, err)
	}
}

func TestListItems_GoodRatingFilter(t *testing.T) {
	f := setup(t)
	seedRatings(t, f, 1, 2.9, 3, 4.5, 5, 5.1)

	f.r().GET("/api/v1/item").
		SetQuery(gofight.H{"good_rating_filter": "true"}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			page := decode[itemPage](t, res)
			assert.Equal(t, 3, page.Count)
			for _, it := range page.Results {
				assert.GreaterOrEqual(t, it.Rating, 3.0)
				assert.LessOrEqual(t, it.Rating, 5.0)
			}
		})

	f.r().GET("/api/v1/item").
		SetQuery(gofight.H{"good_rating_filter": "false"}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			assert.Equal(t, 6, decode[itemPage](t, res).Count)
		})
}

func TestListItems_InvalidBoolean(t *testing.T) {
	f := setup(t)

	f.r().GET("/api/v1/item").
		SetQuery(gofight.H{"archive_status": "maybe"}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, "must be a valid boolean", decode[errorBody](t, res).field("archive_status"))
		})
}

func TestListSmallItems_NeverMoreThanTwo(t *testing.T) {
	f := setup(t)
	seedRatings(t, f, 1, 2, 3, 4, 5)

	f.r().GET("/api/v1/item_small").
		SetQuery(gofight.H{"page_size": "50"}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code)
			page := decode[itemPage](t, res)
			assert.Equal(t, 5, page.Count)
			assert.Len(t, page.Results, 2)
			require.NotNil(t, page.Next)
			assert.Contains(t, *page.Next, "page=2")
			assert.Nil(t, page.Previous)
		})

	f.r().GET("/api/v1/item_small").
		SetQuery(gofight.H{"page": "4"}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, res.Code)
		})
}

func TestGetAndDeleteItem(t *testing.T) {
	f := setup(t)
	item := f.createItem(t, gofight.D{
		"name":    "Soup",
		"user_id": f.user.ID,
		"section": gofight.D{"name": "Starters", "restaurant_id": f.restaurant.ID},
	})
	path := fmt.Sprintf("/api/v1/item/%d", item.ID)

	f.r().GET(path).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Soup", decode[nestedItem](t, res).Name)
	})

	f.r().DELETE(path).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, res.Code)
	})

	f.r().GET(path).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "ITEM_NOT_FOUND", decode[errorBody](t, res).Code)
	})
}

func TestSectionRoutes(t *testing.T) {
	f := setup(t)

	var section model.Section
	f.r().POST("/api/v1/section").
		SetJSON(gofight.D{"name": "Desserts", "restaurant_id": f.restaurant.ID, "user_id": f.user.ID}).
		Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
			require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
			section = decode[model.Section](t, res)
		})

	f.r().GET(fmt.Sprintf("/api/v1/section/%d", section.ID)).Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Desserts", decode[model.Section](t, res).Name)
	})

	item := f.createItem(t, gofight.D{"name": "Cake", "user_id": f.user.ID, "section_id": section.ID})
	assert.Equal(t, "linked", item.SectionOutcome)
}

func TestSystemRoutes(t *testing.T) {
	f := setup(t)

	f.r().GET("/status").Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, res.Code)
		assert.NotEmpty(t, res.HeaderMap.Get("X-Request-ID"))
	})

	f.r().GET("/nowhere").Run(f.engine, func(res gofight.HTTPResponse, _ gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "Route not found", decode[struct {
			Message string `json:"message"`
		}](t, res).Message)
	})
}
