package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/wiseuni/identity-hooks/internal/middleware"
)

// invoker is the part of the dispatcher the handler needs.
type invoker interface {
	InvokeRaw(ctx context.Context, name string, payload []byte) ([]byte, error)
	InvokeTrigger(ctx context.Context, payload []byte) ([]byte, error)
}

// newHandler returns the Lambda handler. A non-empty hook forces every event
// to that hook.
func newHandler(d invoker, hook string) func(context.Context, json.RawMessage) (json.RawMessage, error) {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		ctx = middleware.WithCorrelationID(ctx, requestID(ctx))
		if hook != "" {
			return d.InvokeRaw(ctx, hook, payload)
		}
		return d.InvokeTrigger(ctx, payload)
	}
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}
