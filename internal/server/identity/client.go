package identity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Dial creates a lazily connecting client for the directory at addr with the
// timeout and logging interceptors installed. Extra options are appended.
func Dial(addr string, timeout time.Duration, logger logging.Logger, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			TimeoutInterceptor(timeout),
			LoggingInterceptor(logger),
		),
	}
	return grpc.NewClient(addr, append(base, opts...)...)
}

// TimeoutInterceptor bounds every unary call by d unless the caller already
// set an earlier deadline. Non-positive d disables it.
func TimeoutInterceptor(d time.Duration) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if d > 0 {
			if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > d {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// LoggingInterceptor logs failed directory calls with their status code.
// NotFound is an ordinary lookup answer and is not logged.
func LoggingInterceptor(logger logging.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		if st := status.Convert(err); err != nil && st.Code() != codes.NotFound {
			logger.Warn(ctx, "directory call failed",
				"method", method,
				"code", st.Code().String(),
				"error", st.Message(),
				"duration", time.Since(start))
		}
		return err
	}
}
