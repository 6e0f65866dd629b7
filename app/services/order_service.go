package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// Order lifecycle events.
const (
	EventOrderCreated       = "order.created"
	EventOrderDeleted       = "order.deleted"
	EventOrderCascadeFailed = "order.cascade_failed"
	EventOrderRolledBack    = "order.rolled_back"
)

const (
	cacheKeyTotalSales = "orders:totalsales"
	cacheKeyCount      = "orders:count"
	aggregateTTL       = 30 * time.Second

	// cleanupTimeout bounds compensating deletes, which run on a context
	// detached from the (possibly expired) request.
	cleanupTimeout = 5 * time.Second

	priceLookupConcurrency = 8
)

// OrderItemInput is one requested line.
type OrderItemInput struct {
	Quantity int    `json:"quantity" validate:"gt=0"`
	Product  string `json:"product"  validate:"required,objectid"`
}

// OrderInput is the body of POST /orders. Shipping and contact fields are
// stored verbatim.
type OrderInput struct {
	OrderItems       []OrderItemInput `json:"orderItems" validate:"dive"`
	ShippingAddress1 string           `json:"shippingAddress1"`
	ShippingAddress2 string           `json:"shippingAddress2"`
	City             string           `json:"city"`
	Zip              string           `json:"zip"`
	Country          string           `json:"country"`
	Phone            string           `json:"phone"`
	Status           string           `json:"status"`
	User             string           `json:"user" validate:"nullable,objectid"`
}

// RollbackEvent is the payload of EventOrderRolledBack.
type RollbackEvent struct {
	Items      int
	Removed    int64
	Cause      error
	CleanupErr error
}

// OrderService runs the order workflow: acting-user resolution, line item
// resolution and pricing, atomic creation, cascade deletion and the
// read-side projections.
type OrderService struct {
	store   *repositories.Store
	timeout time.Duration
	now     func() time.Time
}

func NewOrderService(store *repositories.Store) *OrderService {
	return &OrderService{
		store:   store,
		timeout: config.RequestTimeout(),
		now:     time.Now,
	}
}

// WithTimeout overrides the deadline applied to CreateOrder.
func (s *OrderService) WithTimeout(d time.Duration) *OrderService {
	s.timeout = d
	return s
}

// ResolveActingUser decides whose order this is. The principal is the only
// trusted source; a requested user that differs from it is honoured for
// administrators only.
func ResolveActingUser(p *auth.Principal, requested string) (primitive.ObjectID, error) {
	if p == nil {
		return primitive.NilObjectID, &Error{Kind: ErrUnauthenticated, Message: "Authentication required"}
	}
	self, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return primitive.NilObjectID, &Error{Kind: ErrUnauthenticated, Message: "The user is not authorized"}
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return self, nil
	}
	other, err := parseID("user", requested)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if other == self {
		return self, nil
	}
	if !p.IsAdmin {
		return primitive.NilObjectID, &Error{Kind: ErrForbidden, Message: "Only administrators may place orders for another user"}
	}
	return other, nil
}

// CreateOrder validates and prices every line, then writes the line items
// and the order. Nothing is written until all prices are known; if a write
// fails afterwards the line items already written are removed again.
func (s *OrderService) CreateOrder(ctx context.Context, p *auth.Principal, in OrderInput) (models.Order, error) {
	userID, err := ResolveActingUser(p, in.User)
	if err != nil {
		return models.Order{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		switch {
		case !errors.Is(err, repositories.ErrNotFound):
			return models.Order{}, persistence("find user", err)
		case userID.Hex() == p.UserID:
			// Valid token for an account that has since been deleted.
			return models.Order{}, &Error{Kind: ErrUnauthenticated, Message: "The user is not authorized"}
		default:
			return models.Order{}, invalidField("user", "User %s does not exist", userID.Hex())
		}
	}

	items, lines, err := s.resolveItems(ctx, in.OrderItems)
	if err != nil {
		return models.Order{}, err
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.DefaultOrderStatus
	}

	order := models.Order{
		ID:               primitive.NewObjectID(),
		OrderItems:       make([]primitive.ObjectID, len(items)),
		ShippingAddress1: in.ShippingAddress1,
		ShippingAddress2: in.ShippingAddress2,
		City:             in.City,
		Zip:              in.Zip,
		Country:          in.Country,
		Phone:            in.Phone,
		Status:           status,
		TotalPrice:       Total(lines),
		User:             userID,
		DateOrdered:      s.now().UTC().Truncate(time.Millisecond),
	}
	for i, it := range items {
		order.OrderItems[i] = it.ID
	}

	if err := s.commit(ctx, items, &order); err != nil {
		return models.Order{}, err
	}

	s.invalidateAggregates(ctx)
	event.FireAsync(ctx, EventOrderCreated, order)
	logger.WithCtx(ctx).Info("order created",
		"order_id", order.ID.Hex(),
		"user_id", userID.Hex(),
		"items", len(items),
		"total", order.TotalPrice,
	)
	return order, nil
}

// resolveItems validates the requested lines and looks up each product's
// current price. Lookups run concurrently; results are stored by input
// index so line order is preserved.
func (s *OrderService) resolveItems(ctx context.Context, inputs []OrderItemInput) ([]models.OrderItem, []PricedLine, error) {
	items := make([]models.OrderItem, len(inputs))
	fields := map[string]string{}
	for i, in := range inputs {
		if in.Quantity <= 0 {
			fields[fmt.Sprintf("orderItems[%d].quantity", i)] = "Quantity must be a positive integer"
		}
		pid, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.Product))
		if err != nil {
			fields[fmt.Sprintf("orderItems[%d].product", i)] = fmt.Sprintf("Invalid product id %q", in.Product)
			continue
		}
		items[i] = models.OrderItem{ID: primitive.NewObjectID(), Quantity: in.Quantity, Product: pid}
	}
	if len(fields) > 0 {
		return nil, nil, &Error{Kind: ErrValidation, Message: "Invalid order items", Fields: fields}
	}

	lines := make([]PricedLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceLookupConcurrency)
	for i := range items {
		g.Go(func() error {
			product, err := s.store.Products.FindByID(gctx, items[i].Product)
			if errors.Is(err, repositories.ErrNotFound) {
				return invalidField(fmt.Sprintf("orderItems[%d].product", i),
					"Product %s does not exist", items[i].Product.Hex())
			}
			if err != nil {
				return persistence("find product", err)
			}
			lines[i] = PricedLine{Quantity: items[i].Quantity, UnitPrice: product.Price}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, lines, nil
}

func (s *OrderService) commit(ctx context.Context, items []models.OrderItem, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return persistence("create order", err)
	}

	if len(items) > 0 {
		if err := s.store.OrderItems.InsertMany(ctx, items); err != nil {
			// A failed batch insert may still have written a prefix.
			s.rollback(ctx, order.OrderItems, err)
			return persistence("insert order items", err)
		}
	}

	if err := s.store.Orders.Create(ctx, order); err != nil {
		s.rollback(ctx, order.OrderItems, err)
		return persistence("insert order", err)
	}
	return nil
}

func (s *OrderService) rollback(ctx context.Context, ids []primitive.ObjectID, cause error) {
	if len(ids) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	removed, err := s.store.OrderItems.DeleteMany(cctx, ids)
	ev := RollbackEvent{Items: len(ids), Removed: removed, Cause: cause, CleanupErr: err}

	log := logger.WithCtx(ctx).With("items", len(ids), "removed", removed, "cause", cause)
	if err != nil {
		log.Error("order rollback incomplete", "error", err)
	} else {
		log.Warn("order creation rolled back")
	}
	event.Fire(cctx, EventOrderRolledBack, ev)
}

// DeleteOrder removes the order and then each of its line items. A line
// item that is already gone counts as removed. Items that cannot be removed
// are reported in a *CascadeError; the order stays deleted.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	oid, err := parseID("order", id)
	if err != nil {
		return err
	}

	order, err := s.store.Orders.Delete(ctx, oid)
	if err != nil {
		return lookup(err, "Order")
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	var failed []ItemFailure
	for _, itemID := range order.OrderItems {
		err := s.store.OrderItems.Delete(cctx, itemID)
		if err == nil || errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		failed = append(failed, ItemFailure{OrderItem: itemID, Reason: err.Error()})
	}

	s.invalidateAggregates(cctx)
	event.FireAsync(ctx, EventOrderDeleted, order)

	if len(failed) > 0 {
		cerr := &CascadeError{OrderID: order.ID, Failed: failed}
		logger.WithCtx(ctx).Error("order cascade incomplete", "order_id", order.ID.Hex(), "error", cerr)
		event.Fire(cctx, EventOrderCascadeFailed, cerr)
		return cerr
	}

	logger.WithCtx(ctx).Info("order deleted", "order_id", order.ID.Hex(), "items", len(order.OrderItems))
	return nil
}

// UpdateStatus sets a new status label on an order.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	oid, err := parseID("order", id)
	if err != nil {
		return models.Order{}, err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return models.Order{}, invalidField("status", "The status field is required.")
	}

	order, err := s.store.Orders.UpdateStatus(ctx, oid, status)
	if err != nil {
		return models.Order{}, lookup(err, "Order")
	}
	s.invalidateAggregates(ctx)
	return order, nil
}

// List returns all orders newest first with users and line items expanded.
func (s *OrderService) List(ctx context.Context) ([]models.OrderDetail, error) {
	orders, err := s.store.Orders.All(ctx)
	if err != nil {
		return nil, persistence("list orders", err)
	}
	return s.expand(ctx, orders)
}

// Get returns one order with users and line items expanded.
func (s *OrderService) Get(ctx context.Context, id string) (models.OrderDetail, error) {
	oid, err := parseID("order", id)
	if err != nil {
		return models.OrderDetail{}, err
	}
	order, err := s.store.Orders.FindByID(ctx, oid)
	if err != nil {
		return models.OrderDetail{}, lookup(err, "Order")
	}
	details, err := s.expand(ctx, []models.Order{order})
	if err != nil {
		return models.OrderDetail{}, err
	}
	return details[0], nil
}

// ByUser returns the user's orders, newest first, expanded down to each
// product's category.
func (s *OrderService) ByUser(ctx context.Context, userID string) ([]models.OrderDetail, error) {
	uid, err := parseID("user", userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders.FindByUser(ctx, uid)
	if err != nil {
		return nil, persistence("find user orders", err)
	}
	return s.expand(ctx, orders)
}

// TotalSales sums every order's total price; 0 when there are no orders.
func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	v, err := cache.Remember(ctx, cacheKeyTotalSales, aggregateTTL, s.store.Orders.TotalSales)
	if err != nil {
		return 0, persistence("total sales", err)
	}
	return v, nil
}

// Count returns the number of orders.
func (s *OrderService) Count(ctx context.Context) (int64, error) {
	n, err := cache.Remember(ctx, cacheKeyCount, aggregateTTL, s.store.Orders.Count)
	if err != nil {
		return 0, persistence("count orders", err)
	}
	return n, nil
}

func (s *OrderService) invalidateAggregates(ctx context.Context) {
	if err := cache.Del(ctx, cacheKeyTotalSales, cacheKeyCount); err != nil {
		logger.WithCtx(ctx).Warn("order aggregates not invalidated", "error", err)
	}
}

// expand batch-loads the line items, products, categories and users the
// orders reference and assembles the detail views. Missing line items are
// skipped; a product deleted since the order was placed is shown as null.
func (s *OrderService) expand(ctx context.Context, orders []models.Order) ([]models.OrderDetail, error) {
	var itemIDs, userIDs []primitive.ObjectID
	for _, o := range orders {
		itemIDs = append(itemIDs, o.OrderItems...)
		if !o.User.IsZero() {
			userIDs = append(userIDs, o.User)
		}
	}

	items, err := s.store.OrderItems.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, persistence("load order items", err)
	}
	itemByID := make(map[primitive.ObjectID]models.OrderItem, len(items))
	productIDs := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
		productIDs = append(productIDs, it.Product)
	}

	products, err := s.store.Products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, persistence("load products", err)
	}
	categoryIDs := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		categoryIDs = append(categoryIDs, p.Category)
	}
	categories, err := s.store.Categories.FindByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, persistence("load categories", err)
	}
	users, err := s.store.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, persistence("load users", err)
	}

	productByID := expandProducts(products, categories)
	userByID := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for _, u := range users {
		userByID[u.ID] = models.UserSummary{ID: u.ID, Name: u.Name}
	}

	out := make([]models.OrderDetail, len(orders))
	for i, o := range orders {
		d := models.OrderDetail{Order: o, OrderItems: make([]models.OrderItemDetail, 0, len(o.OrderItems))}
		for _, id := range o.OrderItems {
			it, ok := itemByID[id]
			if !ok {
				continue
			}
			line := models.OrderItemDetail{ID: it.ID, Quantity: it.Quantity}
			if p, ok := productByID[it.Product]; ok {
				line.Product = &p
			}
			d.OrderItems = append(d.OrderItems, line)
		}
		if u, ok := userByID[o.User]; ok {
			d.User = &u
		}
		out[i] = d
	}
	return out, nil
}

// expandProducts joins products to their categories by id.
func expandProducts(products []models.Product, categories []models.Category) map[primitive.ObjectID]models.ProductDetail {
	catByID := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, c := range categories {
		catByID[c.ID] = c
	}
	out := make(map[primitive.ObjectID]models.ProductDetail, len(products))
	for _, p := range products {
		d := models.ProductDetail{Product: p}
		if c, ok := catByID[p.Category]; ok {
			d.Category = &c
		}
		out[p.ID] = d
	}
	return out
}
