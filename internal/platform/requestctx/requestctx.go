// Package requestctx carries the request correlation id through context
// so handlers and stores can tag their log lines without threading it
// through every signature.
package requestctx

import "context"

type key int

const requestID key = iota

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestID, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestID).(string)
	return id
}
