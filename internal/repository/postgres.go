package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// querier is what both *pgxpool.Pool and pgx.Tx offer.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store with raw SQL over pgx.
type PostgresStore struct {
	db querier
}

func NewPostgresStore(db querier) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	userColumns       = `id, email, name, created_at`
	restaurantColumns = `id, name, user_id, created_at`
	sectionColumns    = `id, name, restaurant_id, user_id, created_at, updated_at`
	itemColumns       = `id, name, description, rating, archive_status, section_id, user_id, created_at, updated_at`
)

// WithinTx runs fn inside a transaction. Nested calls become savepoints.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&PostgresStore{db: tx})
	})
}

func collectOne[T any](rows pgx.Rows, err error, table string) (*T, error) {
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", table)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound(table)
		}
		return nil, errors.Wrapf(err, "collect %s", table)
	}
	return row, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	rows, err := s.db.Query(ctx,
		`INSERT INTO users (email, name) VALUES (@email, @name) RETURNING `+userColumns,
		pgx.NamedArgs{"email": email, "name": name})
	return collectOne[model.User](rows, err, TableUsers)
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return collectOne[model.User](rows, err, TableUsers)
}

func (s *PostgresStore) CreateRestaurant(ctx context.Context, name string, userID *int64) (*model.Restaurant, error) {
	rows, err := s.db.Query(ctx,
		`INSERT INTO restaurants (name, user_id) VALUES (@name, @user_id) RETURNING `+restaurantColumns,
		pgx.NamedArgs{"name": name, "user_id": userID})
	return collectOne[model.Restaurant](rows, err, TableRestaurants)
}

func (s *PostgresStore) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	rows, err := s.db.Query(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
	return collectOne[model.Restaurant](rows, err, TableRestaurants)
}

func (s *PostgresStore) CreateSection(ctx context.Context, f model.SectionFields) (*model.Section, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO sections (name, restaurant_id, user_id)
		VALUES (@name, @restaurant_id, @user_id)
		RETURNING `+sectionColumns,
		pgx.NamedArgs{
			"name":          f.Name,
			"restaurant_id": f.RestaurantID,
			"user_id":       f.UserID,
		})
	return collectOne[model.Section](rows, err, TableSections)
}

func (s *PostgresStore) GetSection(ctx context.Context, id int64) (*model.Section, error) {
	rows, err := s.db.Query(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id)
	return collectOne[model.Section](rows, err, TableSections)
}

func (s *PostgresStore) UpdateSection(ctx context.Context, id int64, p model.SectionPatch) (*model.Section, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE sections SET
			name          = COALESCE(@name, name),
			restaurant_id = COALESCE(@restaurant_id, restaurant_id),
			user_id       = COALESCE(@user_id, user_id),
			updated_at    = now()
		WHERE id = @id
		RETURNING `+sectionColumns,
		pgx.NamedArgs{
			"id":            id,
			"name":          p.Name,
			"restaurant_id": p.RestaurantID,
			"user_id":       p.UserID,
		})
	return collectOne[model.Section](rows, err, TableSections)
}

func (s *PostgresStore) CreateItem(ctx context.Context, f model.ItemFields) (*model.Item, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO items (name, description, rating, archive_status, section_id, user_id)
		VALUES (@name, @description, @rating, @archive_status, @section_id, @user_id)
		RETURNING `+itemColumns,
		pgx.NamedArgs{
			"name":           f.Name,
			"description":    f.Description,
			"rating":         f.Rating,
			"archive_status": f.ArchiveStatus,
			"section_id":     f.SectionID,
			"user_id":        f.UserID,
		})
	return collectOne[model.Item](rows, err, TableItems)
}

func (s *PostgresStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	rows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return collectOne[model.Item](rows, err, TableItems)
}

func (s *PostgresStore) UpdateItem(ctx context.Context, id int64, p model.ItemPatch) (*model.Item, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE items SET
			name           = COALESCE(@name, name),
			description    = COALESCE(@description, description),
			rating         = COALESCE(@rating, rating),
			archive_status = COALESCE(@archive_status, archive_status),
			section_id     = COALESCE(@section_id, section_id),
			user_id        = COALESCE(@user_id, user_id),
			updated_at     = now()
		WHERE id = @id
		RETURNING `+itemColumns,
		pgx.NamedArgs{
			"id":             id,
			"name":           p.Name,
			"description":    p.Description,
			"rating":         p.Rating,
			"archive_status": p.ArchiveStatus,
			"section_id":     p.SectionID,
			"user_id":        p.UserID,
		})
	return collectOne[model.Item](rows, err, TableItems)
}

func (s *PostgresStore) DeleteItem(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete item")
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound(TableItems)
	}
	return nil
}

func (s *PostgresStore) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, int, error) {
	where, args := itemWhere(f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM items`+where, args).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count items")
	}

	query := `SELECT ` + itemColumns + ` FROM items` + where + ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT @limit`
		args["limit"] = f.Limit
	}
	if f.Offset > 0 {
		query += ` OFFSET @offset`
		args["offset"] = f.Offset
	}

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list items")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Item])
	if err != nil {
		return nil, 0, errors.Wrap(err, "collect items")
	}

	return items, total, nil
}

func itemWhere(f model.ItemFilter) (string, pgx.NamedArgs) {
	var conds []string
	args := pgx.NamedArgs{}

	if f.Name != "" {
		conds = append(conds, `name ILIKE '%' || @name || '%' ESCAPE '\'`)
		args["name"] = escapeLike(f.Name)
	}
	if f.ArchiveStatus != nil {
		conds = append(conds, `archive_status = @archive_status`)
		args["archive_status"] = *f.ArchiveStatus
	}
	if f.GoodRating {
		conds = append(conds, fmt.Sprintf(`rating BETWEEN %d AND %d`, model.GoodRatingMin, model.GoodRatingMax))
	}

	if len(conds) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
