package trace

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TraceIDMetadata carries the trace id on outgoing gRPC calls.
var TraceIDMetadata = strings.ToLower(TraceIDHeader)

// UnaryClientInterceptor tags outgoing gRPC calls with the caller's trace id
// and logs each call with its status and latency.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := ID(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, TraceIDMetadata, id)
		}
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		Logger(ctx).Debug("grpc call",
			"method", method,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return err
	}
}
