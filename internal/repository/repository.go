// Package repository is the Entity Store: it persists users, restaurants,
// sections and items and answers filtered item queries.
//
// Store is implemented twice. PostgresStore runs raw SQL over pgx and is
// what production uses; MemoryStore keeps everything in process and backs
// tests and the "memory" store driver. Both report missing rows through
// sqlerr.NotFound and constraint failures as *pgconn.PgError, so callers
// handle errors the same way whichever store is configured.
package repository

import (
	"context"

	"github.com/deppfellow/menu-api/internal/model"
)

// Table names, also used as not-found hints.
const (
	TableUsers       = "users"
	TableRestaurants = "restaurants"
	TableSections    = "sections"
	TableItems       = "items"
)

// Store is the persistence contract of the service layer.
type Store interface {
	CreateUser(ctx context.Context, email, name string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)

	CreateRestaurant(ctx context.Context, name string, userID *int64) (*model.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error)

	CreateSection(ctx context.Context, fields model.SectionFields) (*model.Section, error)
	GetSection(ctx context.Context, id int64) (*model.Section, error)
	UpdateSection(ctx context.Context, id int64, patch model.SectionPatch) (*model.Section, error)

	CreateItem(ctx context.Context, fields model.ItemFields) (*model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	// ListItems returns the page selected by filter.Limit/Offset, ordered
	// by id, and the total number of matching items.
	ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, int, error)

	// WithinTx runs fn against a transactional view of the store. Every
	// write made through that view is discarded when fn returns an error.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
