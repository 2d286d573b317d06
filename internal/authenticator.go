package internal

import (
	"github.com/dmitrymomot/dispatch/pkg/command"
)

// Authenticator authenticates requests before dispatch and signs responses
// before they are sent. Returning true halts the queue.
type Authenticator interface {
	Scheme() string
	Priority() command.Priority
	AuthenticateRequest(ctx *Context) (bool, error)
	ChallengeResponse(ctx *Context) (bool, error)
}

// AuthenticatorQueue orders authenticators by ascending priority, FIFO on
// ties. It holds at most one authenticator per scheme.
type AuthenticatorQueue struct {
	q queue[Authenticator]
}

// NewAuthenticatorQueue creates a queue holding auths.
func NewAuthenticatorQueue(auths ...Authenticator) *AuthenticatorQueue {
	aq := &AuthenticatorQueue{q: newQueue(Authenticator.Scheme, Authenticator.Priority)}
	for _, a := range auths {
		aq.Add(a)
	}
	return aq
}

// Add enqueues a. It returns false when a is nil or its scheme is taken.
func (aq *AuthenticatorQueue) Add(a Authenticator) bool {
	if a == nil {
		return false
	}
	return aq.q.add(a)
}

// Get returns the authenticator for scheme.
func (aq *AuthenticatorQueue) Get(scheme string) (Authenticator, bool) { return aq.q.get(scheme) }

// Has reports whether an authenticator for scheme is queued.
func (aq *AuthenticatorQueue) Has(scheme string) bool {
	_, ok := aq.q.get(scheme)
	return ok
}

// Authenticators returns the queue in iteration order.
func (aq *AuthenticatorQueue) Authenticators() []Authenticator { return aq.q.all() }

// Len returns the number of queued authenticators.
func (aq *AuthenticatorQueue) Len() int { return len(aq.q.items) }

// Authenticate runs AuthenticateRequest until one returns true or fails.
func (aq *AuthenticatorQueue) Authenticate(ctx *Context) error {
	for _, a := range aq.q.items {
		done, err := a.AuthenticateRequest(ctx)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	return nil
}

// Challenge runs ChallengeResponse until one returns true or fails.
func (aq *AuthenticatorQueue) Challenge(ctx *Context) error {
	for _, a := range aq.q.items {
		done, err := a.ChallengeResponse(ctx)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	return nil
}

// Authenticatable runs the authenticator queue on before.dispatch and
// before.send. Authentication is skipped for users already authenticated
// during this request.
type Authenticatable struct {
	command.HandlerBase[*Context]
	queue *AuthenticatorQueue
}

// NewAuthenticatable creates the behavior for auths.
func NewAuthenticatable(auths ...Authenticator) *Authenticatable {
	b := &Authenticatable{
		HandlerBase: command.NewHandlerBase[*Context](command.PriorityNormal),
		queue:       NewAuthenticatorQueue(auths...),
	}
	b.On("before.dispatch", b.beforeDispatch)
	b.On("before.send", b.beforeSend)
	return b
}

// Queue returns the authenticator queue.
func (b *Authenticatable) Queue() *AuthenticatorQueue { return b.queue }

func (b *Authenticatable) beforeDispatch(ctx *Context) (command.Result, error) {
	if ctx.IsAuthentic() {
		return command.Continue(), nil
	}
	return command.Continue(), b.queue.Authenticate(ctx)
}

func (b *Authenticatable) beforeSend(ctx *Context) (command.Result, error) {
	return command.Continue(), b.queue.Challenge(ctx)
}
