// Package ctx provides a gin.Context-inspired request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (c *OrderController) Show(x *ctx.Context) {
//	    order, err := c.orders.Get(x.Context(), x.Param("id"))
//	    if err != nil {
//	        x.Fail(err)
//	        return
//	    }
//	    x.Success(order)
//	}
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Show))
package ctx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/bind"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/response"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// ErrorMapper turns a service error into a status, message and optional
// detail. Controllers install one with SetErrorMapper.
type ErrorMapper func(err error) (status int, message string, detail any)

var (
	mapperMu sync.RWMutex
	mapper   ErrorMapper = func(err error) (int, string, any) {
		return http.StatusInternalServerError, "Internal Server Error", nil
	}
)

// SetErrorMapper replaces the mapping used by Context.Fail.
func SetErrorMapper(m ErrorMapper) {
	mapperMu.Lock()
	mapper = m
	mapperMu.Unlock()
}

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair and provides a rich helper API.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/orders/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryList splits a comma-separated query value, dropping empty entries.
func (c *Context) QueryList(key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the client address, honouring X-Forwarded-For only
// behind a trusted proxy (see middleware.TrustProxies).
func (c *Context) ClientIP() string { return middleware.ClientIP(c.R) }

// Origin returns scheme://host for the current request, honouring
// X-Forwarded-Proto from a TLS-terminating proxy.
func (c *Context) Origin() string {
	scheme := "http"
	if c.R.TLS != nil {
		scheme = "https"
	}
	if p := c.R.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + c.R.Host
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the authenticated caller, or nil on public routes.
func (c *Context) Principal() *auth.Principal {
	p, _ := middleware.PrincipalFromCtx(c.R.Context())
	return p
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// On any failure it sends a 400 envelope and returns false.
//
//	var input OrderInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// Validate runs validation rules on an already-populated struct.
func (c *Context) Validate(v any) map[string]string {
	return validate.Struct(v)
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes an envelope with the given status code.
func (c *Context) JSON(code int, body response.Envelope) {
	c.status = code
	response.Write(c.W, code, body)
}

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Data: data})
}

// List sends a 200 envelope with data and count.
func (c *Context) List(data any, count int64) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Data: data, Count: &count})
}

// Created sends a 201 envelope.
func (c *Context) Created(data any) {
	c.JSON(http.StatusCreated, response.Envelope{Success: true, Data: data})
}

// Message sends a successful envelope with only a message.
func (c *Context) Message(code int, message string) {
	c.JSON(code, response.Envelope{Success: true, Message: message})
}

// Error sends a failure envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Success: false, Message: message})
}

// ValidationError sends a 400 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusBadRequest, response.Envelope{
		Success: false,
		Message: "Validation failed",
		Error:   errs,
	})
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// Fail maps err through the installed ErrorMapper and writes the envelope.
// Server-side failures are logged with the request logger.
func (c *Context) Fail(err error) {
	mapperMu.RLock()
	m := mapper
	mapperMu.RUnlock()

	status, message, detail := m(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method,
			"path", c.R.URL.Path,
			"error", err,
		)
	}
	c.JSON(status, response.Envelope{Success: false, Message: message, Error: detail})
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.W.WriteHeader(code)
	c.status = code
	fmt.Fprintf(c.W, format, args...)
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
