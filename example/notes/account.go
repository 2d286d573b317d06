package notes

import (
	"strings"

	"github.com/dmitrymomot/dispatch"
)

// Account is a plain controller that signs users in and out of the session.
// It has no model, so actions are named with ?_action=login or logout.
type Account struct {
	*dispatch.BaseController
}

// NewAccount is the factory registered as "accounts".
func NewAccount(*dispatch.Context) (dispatch.Controller, error) {
	c := &Account{}
	c.BaseController = dispatch.NewBaseController("account", dispatch.WithOwner(c))
	c.Register("login", c.login)
	c.Register("logout", c.logout)
	c.Register("whoami", c.whoami)
	return c, nil
}

func (c *Account) login(ctx *dispatch.Context) (any, error) {
	if !ctx.Request.IsPost() {
		return nil, dispatch.ErrMethodNotAllowed("Method GET not allowed")
	}
	name := strings.TrimSpace(ctx.Request.DataString("name"))
	if name == "" {
		return nil, dispatch.ErrRequestInvalid("Name is required")
	}

	us := ctx.User.Session()
	if err := us.Start(ctx); err != nil {
		return nil, err
	}
	sess := us.Session()
	sess.SetUserID(name)
	sess.AddFlash("info", "Signed in as "+name)

	ctx.User.SetID(name)
	ctx.SetAuthentic()
	return "signed in as " + name, nil
}

func (c *Account) logout(ctx *dispatch.Context) (any, error) {
	if !ctx.IsAuthentic() {
		return nil, dispatch.ErrNotAuthenticated("Not signed in")
	}
	sess := ctx.User.Session().Session()
	sess.SetUserID("")
	sess.AddFlash("info", "Signed out")
	ctx.User.SetID("")
	return "signed out", nil
}

func (c *Account) whoami(ctx *dispatch.Context) (any, error) {
	if id := ctx.User.ID(); id != "" {
		return id, nil
	}
	return "anonymous", nil
}
