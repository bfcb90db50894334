package ctxutil

import (
	"context"
	"strings"
)

type traceDataKey struct{}
type upstreamDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

// UpstreamData carries what the page forwarded for the catalog site call.
type UpstreamData struct {
	Cookie   string
	ReturnTo string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

func WithUpstreamData(ctx context.Context, ud *UpstreamData) context.Context {
	if ud != nil {
		ud.Cookie = strings.TrimSpace(ud.Cookie)
		ud.ReturnTo = strings.TrimSpace(ud.ReturnTo)
	}
	return context.WithValue(ctx, upstreamDataKey{}, ud)
}

func GetUpstreamData(ctx context.Context) *UpstreamData {
	if ctx == nil {
		return nil
	}
	if ud, ok := ctx.Value(upstreamDataKey{}).(*UpstreamData); ok {
		return ud
	}
	return nil
}
