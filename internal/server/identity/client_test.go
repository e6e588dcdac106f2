package identity

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTimeoutInterceptor(t *testing.T) {
	icpt := TimeoutInterceptor(time.Minute)

	var got time.Time
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		got, _ = ctx.Deadline()
		return nil
	}

	require.NoError(t, icpt(context.Background(), "/m", nil, nil, nil, invoker))
	assert.WithinDuration(t, time.Now().Add(time.Minute), got, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	want, _ := ctx.Deadline()
	require.NoError(t, icpt(ctx, "/m", nil, nil, nil, invoker))
	assert.Equal(t, want, got, "an earlier caller deadline wins")

	got = time.Time{}
	require.NoError(t, TimeoutInterceptor(0)(context.Background(), "/m", nil, nil, nil, invoker))
	assert.True(t, got.IsZero())
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, logging.FormatJSON, "debug")
	require.NoError(t, err)
	icpt := LoggingInterceptor(logger)

	fail := func(code codes.Code) grpc.UnaryInvoker {
		return func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
			return status.Error(code, "boom")
		}
	}

	err = icpt(context.Background(), MethodGetUserByID, nil, nil, nil, fail(codes.NotFound))
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Empty(t, buf.String())

	err = icpt(context.Background(), MethodGetUserByID, nil, nil, nil, fail(codes.Unavailable))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Contains(t, buf.String(), "directory call failed")
	assert.Contains(t, buf.String(), "Unavailable")
	assert.Contains(t, buf.String(), MethodGetUserByID)
}
