package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/deppfellow/menu-api/internal/config"
	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_SmallPaginatorIgnoresListingConfig(t *testing.T) {
	logger := zerolog.Nop()
	srv := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Store:         config.StoreConfig{Driver: config.StoreDriverMemory},
			Pagination:    config.PaginationConfig{DefaultPageSize: 50, MaxPageSize: 500},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}

	repos, err := repository.NewRepositories(srv)
	require.NoError(t, err)
	services, err := NewService(srv, repos)
	require.NoError(t, err)

	ctx := context.Background()
	owner, err := repos.Store.CreateUser(ctx, "owner@example.com", "Owner")
	require.NoError(t, err)
	for i := range 6 {
		_, err := repos.Store.CreateItem(ctx, model.ItemFields{Name: fmt.Sprintf("Dish %d", i), UserID: owner.ID})
		require.NoError(t, err)
	}

	assert.Equal(t, pagination.SmallPageSize, services.SmallPaginator.MaxSize)

	page, err := services.Item.List(ctx, &model.ListItemsRequest{PageSize: 50}, services.SmallPaginator)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Count)
	assert.Len(t, page.Items, 2)

	page, err = services.Item.List(ctx, &model.ListItemsRequest{PageSize: 50}, services.ListPaginator)
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)
}
