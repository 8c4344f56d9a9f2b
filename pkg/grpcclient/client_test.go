package grpcclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nkmodel/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func countingInvoker(calls *int, errs ...error) grpc.UnaryInvoker {
	return func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		*calls++
		if *calls <= len(errs) {
			return errs[*calls-1]
		}
		return nil
	}
}

func TestInterceptor_RetriesUnavailable(t *testing.T) {
	intercept := unaryClientInterceptor(ClientConfig{MaxRetries: 2, RetryDelay: 1, RetryMethods: []string{"/svc/m"}})
	calls := 0
	unavailable := status.Error(codes.Unavailable, "down")

	err := intercept(context.Background(), "/svc/m", nil, nil, nil, countingInvoker(&calls, unavailable, unavailable))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestInterceptor_GivesUp(t *testing.T) {
	intercept := unaryClientInterceptor(ClientConfig{MaxRetries: 1, RetryDelay: 1, RetryMethods: []string{"/svc/m"}})
	calls := 0
	unavailable := status.Error(codes.Unavailable, "down")

	err := intercept(context.Background(), "/svc/m", nil, nil, nil, countingInvoker(&calls, unavailable, unavailable, unavailable))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, 2, calls)
}

func TestInterceptor_NoRetryOnClientError(t *testing.T) {
	intercept := unaryClientInterceptor(ClientConfig{MaxRetries: 3, RetryDelay: 1, RetryMethods: []string{"/svc/m"}})
	calls := 0

	err := intercept(context.Background(), "/svc/m", nil, nil, nil, countingInvoker(&calls, status.Error(codes.InvalidArgument, "bad horizon")))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, 1, calls)
}

func TestInterceptor_NoRetryForUnlistedMethod(t *testing.T) {
	intercept := unaryClientInterceptor(ClientConfig{MaxRetries: 3, RetryDelay: 1, RetryMethods: []string{"/svc/Get"}})
	calls := 0
	unavailable := status.Error(codes.Unavailable, "down")

	err := intercept(context.Background(), "/svc/Run", nil, nil, nil, countingInvoker(&calls, unavailable))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, 1, calls)
}

func TestInterceptor_ForwardsTraceID(t *testing.T) {
	intercept := unaryClientInterceptor(ClientConfig{RequestTimeout: 5})
	ctx := logger.ContextWithIDs(context.Background(), "trace-42", "", "")

	var seen []string
	hasDeadline := false
	err := intercept(ctx, "/svc/m", nil, nil, nil, func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		seen = md.Get("x-trace-id")
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"trace-42"}, seen)
	assert.True(t, hasDeadline)
}

func TestNewClient_RequiresTarget(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	conn, err := NewClient(ClientConfig{Target: "passthrough:///localhost:0", ConnTimeout: 1, EnableKeepalive: true, KeepaliveInterval: 30})
	require.NoError(t, err)
	assert.NoError(t, conn.Close())
}
