// Package internal implements the dispatch core. Import
// "github.com/dmitrymomot/dispatch" instead; it re-exports the public API.
//
// # Request lifecycle
//
// A [DispatcherConfig] is built once per mount point. Every request gets a
// fresh [Dispatcher] that resolves a controller from the registry, runs the
// authenticator queue, maps the HTTP method to a controller action and hands
// the assembled [Response] to the transports:
//
//	before.dispatch  resolve controller, authenticate
//	before.get       limitable
//	<verb>           get/head/post/put/delete/options
//	before.send      CSRF challenge, post/redirect/get
//	send             session save, transports
//	after.send       terminate
//
// Every phase is a command chain; behaviors hook into it by name.
//
// # Controllers
//
// [BaseController] keeps a table of actions and runs each one between
// before.<action> and after.<action>; the permissible behavior vetoes
// actions CanExecute denies. A controller that also implements
// [Renderable] and [Modellable] is driven by the REST verb mapping:
//
//	GET     render
//	POST    edit on a unique state, add on a collection, or the _action field
//	PUT     edit an existing entity, add a new one
//	DELETE  delete
//	OPTIONS list the allowed methods and POST actions
//
// Any other controller is executed with the action named by the _action
// query parameter.
//
// # Errors
//
// Handlers return [*HTTPError] values built with constructors such as
// ErrNotFound and ErrForbidden. The dispatcher fail action converts any error into a response,
// logs it at a level matching the status and never leaks plain error
// messages unless debug is enabled.
package internal
