package internal

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/dispatch/pkg/command"
)

// controllerHolder is implemented by dispatchers that resolved a controller.
type controllerHolder interface {
	Controller() Controller
}

func subjectController(ctx *Context) Controller {
	if h, ok := ctx.Subject().(controllerHolder); ok {
		return h.Controller()
	}
	return nil
}

// Limitable sets the model state limit of collection requests from the
// "limit" query parameter, falling back to a default and clamping to an
// optional maximum.
type Limitable struct {
	command.HandlerBase[*Context]
	limit    int
	maxLimit int
}

// NewLimitable creates the behavior. maxLimit 0 leaves the limit unbounded.
func NewLimitable(limit, maxLimit int) *Limitable {
	if limit <= 0 {
		limit = DefaultLimit
	}
	b := &Limitable{
		HandlerBase: command.NewHandlerBase[*Context](command.PriorityNormal),
		limit:       limit,
		maxLimit:    maxLimit,
	}
	b.On("before.get", b.apply)
	b.On("before.include", b.apply)
	return b
}

func (b *Limitable) apply(ctx *Context) (command.Result, error) {
	m, ok := subjectController(ctx).(Modellable)
	if !ok {
		return command.Continue(), nil
	}

	limit, err := strconv.Atoi(ctx.Request.Query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = b.limit
	}
	if b.maxLimit > 0 && limit > b.maxLimit {
		limit = b.maxLimit
	}

	ctx.Request.Query.Set("limit", strconv.Itoa(limit))
	m.Model().State().Set("limit", limit)
	return command.Continue(), nil
}

// Resettable implements Post/Redirect/Get: a successful form submit is
// answered with a 301 back to the referrer.
type Resettable struct {
	command.HandlerBase[*Context]
}

// NewResettable creates the behavior.
func NewResettable() *Resettable {
	b := &Resettable{HandlerBase: command.NewHandlerBase[*Context](command.PriorityNormal)}
	b.On("before.send", b.beforeSend)
	return b
}

func (b *Resettable) beforeSend(ctx *Context) (command.Result, error) {
	if !ctx.Request.IsFormSubmit() {
		return command.Continue(), nil
	}
	if ctx.Response.IsSuccess() {
		if ref := ctx.Request.Referrer(); ref != "" {
			ctx.Response.SetRedirect(ref, http.StatusMovedPermanently)
		}
	}
	return command.Continue(), nil
}
