// Package infrastructure 宏观数据接口客户端（FRED 兼容 JSON）
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/wyfcoding/nkmodel/internal/calibration/domain"
	"github.com/wyfcoding/nkmodel/pkg/logger"
)

const (
	observationsPath = "/series/observations"
	dateLayout       = "2006-01-02"
	// FRED 用 "." 表示缺失值
	missingValue = "."
)

// ErrUpstream 上游接口返回错误状态
var ErrUpstream = errors.New("macro data upstream error")

// Config 客户端配置
type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

// FREDClient 带重试与熔断的序列客户端
type FREDClient struct {
	http    *resty.Client
	apiKey  string
	breaker *gobreaker.CircuitBreaker
}

// NewFREDClient 创建客户端
func NewFREDClient(cfg Config) *FREDClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "macro-data",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &FREDClient{http: client, apiKey: cfg.APIKey, breaker: breaker}
}

// FetchSeries 拉取完整序列，跳过缺失值
func (c *FREDClient) FetchSeries(ctx context.Context, seriesID string) (*domain.Series, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, seriesID)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch series %s: %w", seriesID, err)
	}
	return out.(*domain.Series), nil
}

func (c *FREDClient) fetch(ctx context.Context, seriesID string) (*domain.Series, error) {
	var body observationsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"series_id": seriesID,
			"api_key":   c.apiKey,
			"file_type": "json",
		}).
		SetResult(&body).
		Get(observationsPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}
	return parseObservations(seriesID, body.Observations)
}

func parseObservations(seriesID string, obs []observation) (*domain.Series, error) {
	s := &domain.Series{
		ID:     seriesID,
		Dates:  make([]time.Time, 0, len(obs)),
		Values: make([]float64, 0, len(obs)),
	}
	for _, o := range obs {
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		date, err := time.Parse(dateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q: %v", domain.ErrInvalidSeries, o.Date, err)
		}
		d, err := decimal.NewFromString(o.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: bad value %q: %v", domain.ErrInvalidSeries, o.Value, err)
		}
		s.Dates = append(s.Dates, date)
		s.Values = append(s.Values, d.InexactFloat64())
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: series %s has no observations", domain.ErrInsufficientData, seriesID)
	}
	return s, nil
}
