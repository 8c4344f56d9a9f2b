package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nkmodel/pkg/config"
	"github.com/wyfcoding/nkmodel/pkg/logger"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
	"github.com/wyfcoding/nkmodel/pkg/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinLoggingMiddleware_PropagatesIDs(t *testing.T) {
	r := gin.New()
	r.Use(GinLoggingMiddleware())

	var traceInCtx, requestInCtx string
	r.GET("/ping", func(c *gin.Context) {
		traceInCtx = logger.TraceID(c.Request.Context())
		requestInCtx = logger.RequestID(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "trace-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-abc", traceInCtx)
	assert.Equal(t, "trace-abc", w.Header().Get("X-Trace-ID"))
	assert.NotEmpty(t, requestInCtx)
	assert.Equal(t, requestInCtx, w.Header().Get("X-Request-ID"))
}

func TestGinRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(GinLoggingMiddleware(), GinRecoveryMiddleware())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "request_id")
}

func TestGinCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(GinCORSMiddleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGinMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.New("mwtest")
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	r := gin.New()
	r.Use(GinMetricsMiddleware(m))
	r.GET("/runs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/runs/:id", "200")))
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Backend: "local", QPS: 1, Burst: 1}
	r := gin.New()
	r.Use(RateLimitMiddleware(ratelimit.NewLocalRateLimiter(), cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/x", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, QPS: 1, Burst: 1}
	r := gin.New()
	r.Use(RateLimitMiddleware(ratelimit.NewLocalRateLimiter(), cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestGRPCRecoveryInterceptor(t *testing.T) {
	ic := GRPCRecoveryInterceptor()
	_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/M"},
		func(context.Context, any) (any, error) { panic("boom") })
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestGRPCLoggingInterceptor_InjectsIDs(t *testing.T) {
	ic := GRPCLoggingInterceptor()
	var gotTrace string
	_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/M"},
		func(ctx context.Context, _ any) (any, error) {
			gotTrace = logger.TraceID(ctx)
			return "ok", nil
		})
	require.NoError(t, err)
	assert.NotEmpty(t, gotTrace)
}

func TestGRPCMetricsInterceptor(t *testing.T) {
	m := metrics.New("grpcmw")
	require.NoError(t, m.Register(prometheus.NewRegistry()))
	ic := GRPCMetricsInterceptor(m)

	_, _ = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/M"},
		func(context.Context, any) (any, error) { return nil, status.Error(codes.NotFound, "x") })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues("/svc/M", "NotFound")))
}

func TestGRPCRateLimitInterceptor(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, QPS: 1, Burst: 1}
	ic := GRPCRateLimitInterceptor(ratelimit.NewLocalRateLimiter(), cfg)
	h := func(context.Context, any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/M"}

	_, err := ic(context.Background(), nil, info, h)
	require.NoError(t, err)
	_, err = ic(context.Background(), nil, info, h)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
