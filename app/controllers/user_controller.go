package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(users, int64(len(users)))
}

func (uc *UserController) Show(c *ctx.Context) {
	u, err := uc.users.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (uc *UserController) Store(c *ctx.Context) {
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.users.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", u)
}

func (uc *UserController) Register(c *ctx.Context) {
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.users.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", u)
}

func (uc *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.users.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusOK, "User logged in successfully", res)
}

func (uc *UserController) Count(c *ctx.Context) {
	n, err := uc.users.Count(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	count(c, n)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	if err := uc.users.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "User deleted successfully")
}
