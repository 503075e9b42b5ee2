package repository

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
)

type memData struct {
	seq         int64
	users       map[int64]model.User
	restaurants map[int64]model.Restaurant
	sections    map[int64]model.Section
	items       map[int64]model.Item
}

func (d *memData) clone() *memData {
	return &memData{
		seq:         d.seq,
		users:       maps.Clone(d.users),
		restaurants: maps.Clone(d.restaurants),
		sections:    maps.Clone(d.sections),
		items:       maps.Clone(d.items),
	}
}

func (d *memData) nextID() int64 {
	d.seq++
	return d.seq
}

// MemoryStore is an in-process Store. Referential integrity is enforced the
// way the postgres schema does it, including the SQLSTATE of violations.
//
// A transaction holds the store lock until it finishes, so transactions are
// serialized with every other call.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memData{
			users:       map[int64]model.User{},
			restaurants: map[int64]model.Restaurant{},
			sections:    map[int64]model.Section{},
			items:       map[int64]model.Item{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	defer s.lock()()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true, now: s.now}

	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func violation(code, table, constraint, column string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           code,
		Message:        "violates " + constraint,
		TableName:      table,
		ColumnName:     column,
		ConstraintName: constraint,
	}
}

func fkViolation(table, column string) error {
	return violation("23503", table, table+"_"+column+"_fkey", "")
}

func (s *MemoryStore) CreateUser(_ context.Context, email, name string) (*model.User, error) {
	defer s.lock()()

	for _, u := range s.data.users {
		if u.Email == email {
			return nil, violation("23505", TableUsers, "users_email_key", "")
		}
	}

	u := model.User{Email: email, Name: name}
	u.ID = s.data.nextID()
	u.CreatedAt = s.now()
	s.data.users[u.ID] = u
	return &u, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	defer s.lock()()

	u, ok := s.data.users[id]
	if !ok {
		return nil, sqlerr.NotFound(TableUsers)
	}
	return &u, nil
}

func (s *MemoryStore) CreateRestaurant(_ context.Context, name string, userID *int64) (*model.Restaurant, error) {
	defer s.lock()()

	if userID != nil {
		if _, ok := s.data.users[*userID]; !ok {
			return nil, fkViolation(TableRestaurants, "user_id")
		}
	}

	r := model.Restaurant{Name: name, UserID: userID}
	r.ID = s.data.nextID()
	r.CreatedAt = s.now()
	s.data.restaurants[r.ID] = r
	return &r, nil
}

func (s *MemoryStore) GetRestaurant(_ context.Context, id int64) (*model.Restaurant, error) {
	defer s.lock()()

	r, ok := s.data.restaurants[id]
	if !ok {
		return nil, sqlerr.NotFound(TableRestaurants)
	}
	return &r, nil
}

func (s *MemoryStore) checkSection(sec model.Section) error {
	if _, ok := s.data.restaurants[sec.RestaurantID]; !ok {
		return fkViolation(TableSections, "restaurant_id")
	}
	if _, ok := s.data.users[sec.UserID]; !ok {
		return fkViolation(TableSections, "user_id")
	}
	return nil
}

func (s *MemoryStore) CreateSection(_ context.Context, f model.SectionFields) (*model.Section, error) {
	defer s.lock()()

	sec := model.Section{Name: f.Name, RestaurantID: f.RestaurantID, UserID: f.UserID}
	if err := s.checkSection(sec); err != nil {
		return nil, err
	}

	sec.ID = s.data.nextID()
	sec.CreatedAt = s.now()
	sec.UpdatedAt = sec.CreatedAt
	s.data.sections[sec.ID] = sec
	return &sec, nil
}

func (s *MemoryStore) GetSection(_ context.Context, id int64) (*model.Section, error) {
	defer s.lock()()

	sec, ok := s.data.sections[id]
	if !ok {
		return nil, sqlerr.NotFound(TableSections)
	}
	return &sec, nil
}

func (s *MemoryStore) UpdateSection(_ context.Context, id int64, p model.SectionPatch) (*model.Section, error) {
	defer s.lock()()

	sec, ok := s.data.sections[id]
	if !ok {
		return nil, sqlerr.NotFound(TableSections)
	}

	sec = p.Apply(sec)
	if err := s.checkSection(sec); err != nil {
		return nil, err
	}

	sec.UpdatedAt = s.now()
	s.data.sections[id] = sec
	return &sec, nil
}

func (s *MemoryStore) checkItem(it model.Item) error {
	if it.SectionID != nil {
		if _, ok := s.data.sections[*it.SectionID]; !ok {
			return fkViolation(TableItems, "section_id")
		}
	}
	if _, ok := s.data.users[it.UserID]; !ok {
		return fkViolation(TableItems, "user_id")
	}
	return nil
}

// detach copies the pointer fields of it so the stored row never shares
// memory with callers.
func detach(it model.Item) model.Item {
	if it.SectionID != nil {
		it.SectionID = model.Int64(*it.SectionID)
	}
	return it
}

func (s *MemoryStore) CreateItem(_ context.Context, f model.ItemFields) (*model.Item, error) {
	defer s.lock()()

	it := model.Item{
		Name:          f.Name,
		Description:   f.Description,
		Rating:        f.Rating,
		ArchiveStatus: f.ArchiveStatus,
		SectionID:     f.SectionID,
		UserID:        f.UserID,
	}
	if err := s.checkItem(it); err != nil {
		return nil, err
	}

	it.ID = s.data.nextID()
	it.CreatedAt = s.now()
	it.UpdatedAt = it.CreatedAt
	s.data.items[it.ID] = detach(it)
	return &it, nil
}

func (s *MemoryStore) GetItem(_ context.Context, id int64) (*model.Item, error) {
	defer s.lock()()

	it, ok := s.data.items[id]
	if !ok {
		return nil, sqlerr.NotFound(TableItems)
	}
	it = detach(it)
	return &it, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, id int64, p model.ItemPatch) (*model.Item, error) {
	defer s.lock()()

	it, ok := s.data.items[id]
	if !ok {
		return nil, sqlerr.NotFound(TableItems)
	}

	it = p.Apply(it)
	if err := s.checkItem(it); err != nil {
		return nil, err
	}

	it.UpdatedAt = s.now()
	s.data.items[id] = detach(it)
	return &it, nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.data.items[id]; !ok {
		return sqlerr.NotFound(TableItems)
	}
	delete(s.data.items, id)
	return nil
}

func (s *MemoryStore) ListItems(_ context.Context, f model.ItemFilter) ([]model.Item, int, error) {
	defer s.lock()()

	ids := slices.Sorted(maps.Keys(s.data.items))

	matched := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		if it := s.data.items[id]; f.Matches(it) {
			matched = append(matched, detach(it))
		}
	}

	total := len(matched)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}

	return matched[start:end], total, nil
}
