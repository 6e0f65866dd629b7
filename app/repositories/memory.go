package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
)

// NewMemoryStore returns a Store backed by process memory. Not durable
// across restarts; used by tests and STORE_DRIVER=memory.
func NewMemoryStore() *Store {
	return &Store{
		Categories: &memCategories{t: newTable[models.Category]()},
		Products:   &memProducts{t: newTable[models.Product]()},
		Users:      &memUsers{t: newTable[models.User]()},
		OrderItems: &memOrderItems{t: newTable[models.OrderItem]()},
		Orders:     &memOrders{t: newTable[models.Order]()},
	}
}

// table is a mutex-guarded id → document map that remembers insertion order.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[primitive.ObjectID]T
	order []primitive.ObjectID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[primitive.ObjectID]T{}}
}

func (t *table[T]) get(id primitive.ObjectID) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

func (t *table[T]) getMany(ids []primitive.ObjectID) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if row, ok := t.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) insert(id primitive.ObjectID, row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

// replace overwrites an existing row; ErrNotFound if absent.
func (t *table[T]) replace(id primitive.ObjectID, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.rows[id] = row
	return nil
}

func (t *table[T]) update(id primitive.ObjectID, fn func(*T)) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	fn(&row)
	t.rows[id] = row
	return row, nil
}

func (t *table[T]) remove(id primitive.ObjectID) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return row, nil
}

func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) count() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int64(len(t.rows))
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

// ── Categories ───────────────────────────────────────────────────────────────

type memCategories struct{ t *table[models.Category] }

func (r *memCategories) All(_ context.Context) ([]models.Category, error) {
	return r.t.list(nil), nil
}

func (r *memCategories) FindByID(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	return r.t.get(id)
}

func (r *memCategories) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	return r.t.getMany(ids), nil
}

func (r *memCategories) Create(_ context.Context, c *models.Category) error {
	ensureID(&c.ID)
	r.t.insert(c.ID, *c)
	return nil
}

func (r *memCategories) Update(_ context.Context, c *models.Category) error {
	return r.t.replace(c.ID, *c)
}

func (r *memCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	_, err := r.t.remove(id)
	return err
}

// ── Products ─────────────────────────────────────────────────────────────────

type memProducts struct{ t *table[models.Product] }

func (r *memProducts) Find(_ context.Context, f ProductFilter) ([]models.Product, error) {
	cats := make(map[primitive.ObjectID]bool, len(f.Categories))
	for _, c := range f.Categories {
		cats[c] = true
	}
	out := r.t.list(func(p models.Product) bool {
		if len(cats) > 0 && !cats[p.Category] {
			return false
		}
		if f.Featured != nil && p.IsFeatured != *f.Featured {
			return false
		}
		return true
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	return r.t.get(id)
}

func (r *memProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return r.t.getMany(ids), nil
}

func (r *memProducts) Create(_ context.Context, p *models.Product) error {
	ensureID(&p.ID)
	r.t.insert(p.ID, *p)
	return nil
}

func (r *memProducts) Update(_ context.Context, p *models.Product) error {
	_, err := r.t.update(p.ID, func(cur *models.Product) {
		created := cur.DateCreated
		*cur = *p
		cur.DateCreated = created
	})
	return err
}

func (r *memProducts) SetImages(_ context.Context, id primitive.ObjectID, images []string) (models.Product, error) {
	return r.t.update(id, func(p *models.Product) {
		p.Images = append([]string(nil), images...)
	})
}

func (r *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	_, err := r.t.remove(id)
	return err
}

func (r *memProducts) Count(_ context.Context) (int64, error) {
	return r.t.count(), nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type memUsers struct {
	mu sync.Mutex // serialises the email uniqueness check with the insert
	t  *table[models.User]
}

func (r *memUsers) All(_ context.Context) ([]models.User, error) {
	return r.t.list(nil), nil
}

func (r *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	return r.t.get(id)
}

func (r *memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return r.t.getMany(ids), nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	found := r.t.list(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
	if len(found) == 0 {
		return models.User{}, ErrNotFound
	}
	return found[0], nil
}

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.FindByEmail(ctx, u.Email); err == nil {
		return ErrDuplicate
	}
	ensureID(&u.ID)
	r.t.insert(u.ID, *u)
	return nil
}

func (r *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	_, err := r.t.remove(id)
	return err
}

func (r *memUsers) Count(_ context.Context) (int64, error) {
	return r.t.count(), nil
}

// ── Order items ──────────────────────────────────────────────────────────────

type memOrderItems struct{ t *table[models.OrderItem] }

func (r *memOrderItems) InsertMany(_ context.Context, items []models.OrderItem) error {
	for i := range items {
		ensureID(&items[i].ID)
		r.t.insert(items[i].ID, items[i])
	}
	return nil
}

func (r *memOrderItems) FindByID(_ context.Context, id primitive.ObjectID) (models.OrderItem, error) {
	return r.t.get(id)
}

func (r *memOrderItems) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.OrderItem, error) {
	return r.t.getMany(ids), nil
}

func (r *memOrderItems) Delete(_ context.Context, id primitive.ObjectID) error {
	_, err := r.t.remove(id)
	return err
}

func (r *memOrderItems) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, err := r.t.remove(id); err == nil {
			n++
		}
	}
	return n, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

type memOrders struct{ t *table[models.Order] }

func (r *memOrders) All(_ context.Context) ([]models.Order, error) {
	return newestFirst(r.t.list(nil)), nil
}

func (r *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	return r.t.get(id)
}

func (r *memOrders) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return newestFirst(r.t.list(func(o models.Order) bool { return o.User == userID })), nil
}

func (r *memOrders) Create(_ context.Context, o *models.Order) error {
	ensureID(&o.ID)
	r.t.insert(o.ID, *o)
	return nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	return r.t.update(id, func(o *models.Order) { o.Status = status })
}

func (r *memOrders) Delete(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	return r.t.remove(id)
}

func (r *memOrders) Count(_ context.Context) (int64, error) {
	return r.t.count(), nil
}

func (r *memOrders) TotalSales(_ context.Context) (float64, error) {
	var sum float64
	for _, o := range r.t.list(nil) {
		sum += o.TotalPrice
	}
	return sum, nil
}

func newestFirst(orders []models.Order) []models.Order {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].DateOrdered.After(orders[j].DateOrdered)
	})
	return orders
}
