// internal/browser/context_utils.go
package browser

import "context"

// CombineContext derives a context from ctx1, keeping its values (the CDP target among them),
// that is also done when ctx2 is. The earlier of the two deadlines applies.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	var combinedCtx context.Context
	var cancel context.CancelFunc
	if dl, ok := ctx2.Deadline(); ok {
		combinedCtx, cancel = context.WithDeadline(ctx1, dl)
	} else {
		combinedCtx, cancel = context.WithCancel(ctx1)
	}

	go func() {
		select {
		case <-ctx2.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
