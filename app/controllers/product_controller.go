package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/bind"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index lists products, filtered by ?categories=id1,id2 when given.
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.products.List(c.Context(), c.QueryList("categories"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(products, int64(len(products)))
}

func (pc *ProductController) Show(c *ctx.Context) {
	p, err := pc.products.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

// Store creates a product from a multipart form with an "image" file.
func (pc *ProductController) Store(c *ctx.Context) {
	form, err := bind.Multipart(c.R)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	in, errs := productForm(form)
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	var image *services.Upload
	if files := form.File["image"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			c.Error(http.StatusBadRequest, "Unreadable image")
			return
		}
		defer f.Close()
		image = upload(files[0], f)
	}

	p, err := pc.products.Create(c.Context(), in, image, c.Origin())
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", p)
}

func (pc *ProductController) Update(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.products.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", p)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product deleted successfully")
}

func (pc *ProductController) Count(c *ctx.Context) {
	n, err := pc.products.Count(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	count(c, n)
}

// Featured serves /get/featured and /get/featured/{count}.
func (pc *ProductController) Featured(c *ctx.Context) {
	limit := 0
	if raw := c.Param("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.ValidationError(map[string]string{"count": "The count must be a non-negative integer."})
			return
		}
		limit = n
	}
	products, err := pc.products.Featured(c.Context(), limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(products, int64(len(products)))
}

// Gallery replaces the product's images with the "images" files.
func (pc *ProductController) Gallery(c *ctx.Context) {
	form, err := bind.Multipart(c.R)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	headers := form.File["images"]
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.Error(http.StatusBadRequest, "Unreadable image")
			return
		}
		defer f.Close()
		uploads = append(uploads, *upload(fh, f))
	}

	p, err := pc.products.Gallery(c.Context(), c.Param("id"), uploads, c.Origin())
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusOK, "Images updated successfully", p)
}

func upload(fh *multipart.FileHeader, r io.Reader) *services.Upload {
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     r,
	}
}

// productForm reads the product fields of a multipart form. Numeric fields
// that do not parse are reported per field.
func productForm(form *multipart.Form) (services.ProductInput, map[string]string) {
	val := func(k string) string {
		if v := form.Value[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	errs := map[string]string{}
	num := func(k string) float64 {
		raw := val(k)
		if raw == "" {
			return 0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[k] = "The " + k + " field must be a number."
		}
		return f
	}
	integer := func(k string) int {
		raw := val(k)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[k] = "The " + k + " field must be an integer."
		}
		return n
	}

	in := services.ProductInput{
		Name:            val("name"),
		Description:     val("description"),
		RichDescription: val("richDescription"),
		Brand:           val("brand"),
		Price:           num("price"),
		Category:        val("category"),
		CountInStock:    integer("countInStock"),
		Rating:          num("rating"),
		NumReviews:      integer("numReviews"),
	}
	if raw := val("isFeatured"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["isFeatured"] = "The isFeatured field must be true or false."
		}
		in.IsFeatured = b
	}
	return in, errs
}
