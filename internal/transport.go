package internal

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
)

// Transport writes a response to the client. Returning true stops the queue.
type Transport interface {
	Name() string
	Priority() command.Priority
	Send(ctx *Context, w http.ResponseWriter) (bool, error)
}

// TransportQueue orders transports by ascending priority, one per name.
type TransportQueue struct {
	q queue[Transport]
}

// NewTransportQueue creates a queue holding ts.
func NewTransportQueue(ts ...Transport) *TransportQueue {
	tq := &TransportQueue{q: newQueue(Transport.Name, Transport.Priority)}
	for _, t := range ts {
		tq.Add(t)
	}
	return tq
}

// Add enqueues t unless its name is taken.
func (tq *TransportQueue) Add(t Transport) bool {
	if t == nil {
		return false
	}
	return tq.q.add(t)
}

// Get returns the transport called name.
func (tq *TransportQueue) Get(name string) (Transport, bool) { return tq.q.get(name) }

// Transports returns the queue in iteration order.
func (tq *TransportQueue) Transports() []Transport { return tq.q.all() }

// Send runs transports until one handles the response.
func (tq *TransportQueue) Send(ctx *Context, w http.ResponseWriter) error {
	for _, t := range tq.q.items {
		done, err := t.Send(ctx, w)
		if err != nil {
			return fmt.Errorf("transport %s: %w", t.Name(), err)
		}
		if done {
			return nil
		}
	}
	return nil
}

func writeHeaders(ctx *Context, w http.ResponseWriter) {
	h := w.Header()
	for k, vs := range ctx.Response.Headers {
		h[k] = append([]string(nil), vs...)
	}
	for _, c := range ctx.Response.Cookies() {
		http.SetCookie(w, c)
	}
}

func bodyAllowed(ctx *Context) bool {
	status := ctx.Response.Status()
	return ctx.Request.Method() != "head" &&
		status != http.StatusNoContent &&
		status != http.StatusNotModified &&
		status >= http.StatusOK
}

// RedirectTransport writes redirects with a Location header and no body.
type RedirectTransport struct{}

// NewRedirectTransport creates the transport.
func NewRedirectTransport() *RedirectTransport { return &RedirectTransport{} }

// Name implements Transport.
func (*RedirectTransport) Name() string { return "redirect" }

// Priority implements Transport.
func (*RedirectTransport) Priority() command.Priority { return command.PriorityHigh }

// Send implements Transport.
func (*RedirectTransport) Send(ctx *Context, w http.ResponseWriter) (bool, error) {
	if !ctx.Response.IsRedirect() {
		return false, nil
	}
	writeHeaders(ctx, w)
	w.WriteHeader(ctx.Response.Status())
	return true, nil
}

// JSONTransport answers requests that asked for JSON.
// Errors are written as {"error":{"code":404,"message":"..."}}.
type JSONTransport struct{}

// NewJSONTransport creates the transport.
func NewJSONTransport() *JSONTransport { return &JSONTransport{} }

// Name implements Transport.
func (*JSONTransport) Name() string { return "json" }

// Priority implements Transport.
func (*JSONTransport) Priority() command.Priority { return command.PriorityNormal }

type jsonError struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Send implements Transport.
func (*JSONTransport) Send(ctx *Context, w http.ResponseWriter) (bool, error) {
	if ctx.Request.Format() != "json" {
		return false, nil
	}
	resp := ctx.Response

	body := resp.Content()
	if resp.IsError() {
		b, err := json.Marshal(jsonError{Error: jsonErrorBody{
			Code:    resp.Status(),
			Message: resp.StatusMessage(),
		}})
		if err != nil {
			return false, err
		}
		body = b
	}

	writeHeaders(ctx, w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status())
	if bodyAllowed(ctx) && len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return true, err
		}
	}
	return true, nil
}

// HTTPTransport is the fallback transport. Error responses without content
// get a minimal document whose message is stripped of markup.
type HTTPTransport struct {
	sanitizer *sanitizer.Sanitizer
}

// NewHTTPTransport creates the transport. A nil sanitizer uses the default one.
func NewHTTPTransport(s *sanitizer.Sanitizer) *HTTPTransport {
	if s == nil {
		s = sanitizer.New()
	}
	return &HTTPTransport{sanitizer: s}
}

// Name implements Transport.
func (*HTTPTransport) Name() string { return "http" }

// Priority implements Transport.
func (*HTTPTransport) Priority() command.Priority { return command.PriorityLow }

// Send implements Transport.
func (t *HTTPTransport) Send(ctx *Context, w http.ResponseWriter) (bool, error) {
	resp := ctx.Response

	body := resp.Content()
	contentType := resp.ContentType()
	if resp.IsError() && len(body) == 0 {
		body, contentType = t.errorDocument(ctx)
	}
	if contentType == "" && len(body) > 0 {
		contentType = http.DetectContentType(body)
	}

	writeHeaders(ctx, w)
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(resp.Status())
	if bodyAllowed(ctx) && len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (t *HTTPTransport) errorDocument(ctx *Context) ([]byte, string) {
	status := ctx.Response.Status()
	msg := t.sanitizer.StripHTML(ctx.Response.StatusMessage())
	if ctx.Request.IsAjax() {
		return []byte(msg + "\n"), "text/plain; charset=utf-8"
	}
	title := html.EscapeString(fmt.Sprintf("%d %s", status, http.StatusText(status)))
	doc := fmt.Sprintf("<!DOCTYPE html>\n<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>\n",
		title, title, html.EscapeString(msg))
	return []byte(doc), "text/html; charset=utf-8"
}
