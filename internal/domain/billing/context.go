package billing

import "context"

type viewIDKey struct{}

// WithViewID tags ctx with the client's dashboard view identifier, such as one
// browser tab.
func WithViewID(ctx context.Context, viewID string) context.Context {
	return context.WithValue(ctx, viewIDKey{}, viewID)
}

// ViewIDFrom returns the view identifier stored on ctx.
func ViewIDFrom(ctx context.Context) (string, bool) {
	viewID, ok := ctx.Value(viewIDKey{}).(string)
	return viewID, ok && viewID != ""
}
