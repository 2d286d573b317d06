// Package command implements a priority-ordered, interruptible hook chain.
//
// A [Chain] holds handlers sorted ascending by [Priority] (lower runs first,
// ties keep insertion order). Executing a dotted command name such as
// "before.render" visits every enabled handler that registered a hook for
// that name. Handlers that did not register the hook are skipped silently,
// which is how a handler subscribes only to the hooks it cares about.
//
// # Results
//
// Hooks return a [Result]. [Continue] lets the chain move on, [Break] stops
// it and hands the carried value back to the caller of [Chain.Execute]:
//
//	base := &command.HandlerBase[*Ctx]{}
//	base.On("before.save", func(ctx *Ctx) (command.Result, error) {
//	    if !ctx.Valid() {
//	        return command.Break(false), nil
//	    }
//	    return command.Continue(), nil
//	})
//
//	chain := command.NewChain[*Ctx]()
//	_ = chain.Add(handler)
//
//	res, err := chain.Execute("before.save", ctx)
//	if res.IsBreak() {
//	    // vetoed
//	}
//
// When no hook breaks, Execute returns the zero [Result], meaning
// "no opinion". Errors returned by hooks are never caught by the chain;
// they are returned to the caller unchanged.
//
// # Context
//
// The chain context type must satisfy [Contextual]. [Context] is an
// embeddable implementation carrying an id, the current command name, the
// subject that raised the command and free-form attributes. Callers that
// execute nested commands use [Context.Snapshot] to restore name and
// subject afterwards.
package command
