package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) Index(c *ctx.Context) {
	cats, err := cc.categories.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cats)
}

func (cc *CategoryController) Show(c *ctx.Context) {
	cat, err := cc.categories.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (cc *CategoryController) Store(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := cc.categories.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully!", cat)
}

func (cc *CategoryController) Update(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := cc.categories.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusOK, "The category is updated!", cat)
}

func (cc *CategoryController) Destroy(c *ctx.Context) {
	if err := cc.categories.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "The category is deleted!")
}
