package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultOrderStatus is applied when an order is created without a status.
const DefaultOrderStatus = "Pending"

// OrderItem is one quantity-of-product line inside an order. Line items are
// only ever created by order creation and belong to exactly one order.
type OrderItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Quantity int                `bson:"quantity"      json:"quantity"`
	Product  primitive.ObjectID `bson:"product"       json:"product"`
}

// Order is a placed order. TotalPrice is a snapshot taken at creation time
// and is never recomputed from current product prices.
type Order struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"    json:"id"`
	OrderItems       []primitive.ObjectID `bson:"orderItems"       json:"orderItems"`
	ShippingAddress1 string               `bson:"shippingAddress1" json:"shippingAddress1"`
	ShippingAddress2 string               `bson:"shippingAddress2" json:"shippingAddress2"`
	City             string               `bson:"city"             json:"city"`
	Zip              string               `bson:"zip"              json:"zip"`
	Country          string               `bson:"country"          json:"country"`
	Phone            string               `bson:"phone"            json:"phone"`
	Status           string               `bson:"status"           json:"status"`
	TotalPrice       float64              `bson:"totalPrice"       json:"totalPrice"`
	User             primitive.ObjectID   `bson:"user,omitempty"   json:"user"`
	DateOrdered      time.Time            `bson:"dateOrdered"      json:"dateOrdered"`
}

// OrderItemDetail is a line item with its product (and category) expanded.
// Product is nil when the product has since been deleted.
type OrderItemDetail struct {
	ID       primitive.ObjectID `json:"id"`
	Quantity int                `json:"quantity"`
	Product  *ProductDetail     `json:"product"`
}

// OrderDetail is an order with line items and user expanded.
type OrderDetail struct {
	Order
	OrderItems []OrderItemDetail `json:"orderItems"`
	User       *UserSummary      `json:"user"`
}
