package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"nullable,numeric"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
	})
	assert.False(t, validate.HasErrors(errs), "got %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "phone")
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	assert.Contains(t, validate.Struct(in{Email: "not-an-email"}), "email")
	assert.Empty(t, validate.Struct(in{Email: "valid@example.com"}))
}

func TestObjectIDRule(t *testing.T) {
	type in struct {
		Product string `json:"product" validate:"required,objectid"`
	}
	assert.Empty(t, validate.Struct(in{Product: "64b7f0c2a1b2c3d4e5f60718"}))
	assert.Contains(t, validate.Struct(in{Product: "64b7f0c2"}), "product")
	assert.Contains(t, validate.Struct(in{Product: "zzzzzzzzzzzzzzzzzzzzzzzz"}), "product")
}

func TestHexColorRule(t *testing.T) {
	type in struct {
		Color string `json:"color" validate:"nullable,hexcolor"`
	}
	assert.Empty(t, validate.Struct(in{}))
	assert.Empty(t, validate.Struct(in{Color: "#a1B2c3"}))
	assert.Contains(t, validate.Struct(in{Color: "red"}), "color")
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Price float64 `json:"price" validate:"gte=0"`
		Stock int     `json:"countInStock" validate:"gte=0,lte=255"`
	}
	assert.Contains(t, validate.Struct(in{Price: -1}), "price")
	assert.Contains(t, validate.Struct(in{Stock: 256}), "countInStock")
	assert.Empty(t, validate.Struct(in{Price: 0, Stock: 10}))
}

func TestInRule(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=Pending,Shipped,Delivered,max=20"`
	}
	assert.Contains(t, validate.Struct(in{Status: "Lost"}), "status")
	assert.Empty(t, validate.Struct(in{Status: "Shipped"}))
}

func TestDiveReportsIndexedPaths(t *testing.T) {
	type item struct {
		Quantity int    `json:"quantity" validate:"gt=0"`
		Product  string `json:"product"  validate:"required,objectid"`
	}
	type in struct {
		Items []item `json:"orderItems" validate:"dive"`
	}

	errs := validate.Struct(in{Items: []item{
		{Quantity: 1, Product: "64b7f0c2a1b2c3d4e5f60718"},
		{Quantity: 0, Product: "nope"},
	}})
	assert.Len(t, errs, 2)
	assert.Contains(t, errs, "orderItems[1].quantity")
	assert.Contains(t, errs, "orderItems[1].product")

	assert.Empty(t, validate.Struct(in{}))
}

func TestNonStructInputIsIgnored(t *testing.T) {
	assert.Empty(t, validate.Struct("plain string"))
	var p *registerInput
	assert.Empty(t, validate.Struct(p))
}
