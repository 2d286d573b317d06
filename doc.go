// Package dispatch is an HTTP dispatch core: a dispatcher state machine
// that maps REST verbs onto controller actions, run as command chains with
// before/after hooks, authenticators and pluggable response transports.
//
// # Quick Start
//
// Register controllers, mount a dispatcher and run:
//
//	app := dispatch.New(
//	    dispatch.WithLogger(log),
//	    dispatch.WithSession(session.NewMemoryStore()),
//	    dispatch.WithControllers(map[string]dispatch.ControllerFactory{
//	        "notes": notes.New(repo),
//	    }),
//	    dispatch.WithDispatcher("/app", dispatch.WithDefaultController("notes")),
//	)
//	if err := app.Run(":8080"); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// # Request mapping
//
//	GET     render (or browse/read on plain controllers)
//	HEAD    as GET without a body
//	POST    add or edit; ?_action=name selects another action
//	PUT     edit an existing entity, add when new
//	DELETE  delete
//	OPTIONS Allow header from the permitted actions
//
// Writes answer with a redirect back to the referrer (Post/Redirect/Get)
// unless the client asked for JSON.
//
// # Controllers
//
// Embed a BaseController and register actions:
//
//	type notes struct{ *dispatch.BaseController }
//
//	func New(repo Repo) dispatch.ControllerFactory {
//	    return func(ctx *dispatch.Context) (dispatch.Controller, error) {
//	        c := &notes{}
//	        c.BaseController = dispatch.NewBaseController("note", dispatch.WithOwner(c))
//	        c.Register("browse", c.browse)
//	        c.RequireAuthentic("add", "edit", "delete")
//	        return c, nil
//	    }
//	}
//
// # Errors
//
// Actions return errors; HTTPError values keep their status, anything else
// becomes a 500. The failure is rendered by the same transports as a
// regular result.
package dispatch
