package aws

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Recorder is the metrics surface used by middleware and services.
type Recorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
	IsEnabled() bool
}

type metricsAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// maxMetricBatch is the PutMetricData limit on data points per call.
const maxMetricBatch = 1000

// MetricsClient queues CloudWatch data points and publishes them in
// batches from Run. Record calls never block on the network.
type MetricsClient struct {
	api       metricsAPI
	namespace string
	enabled   bool
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewMetricsClient creates a CloudWatch client. Nothing is sent unless
// CLOUDWATCH_ENABLED=true; CLOUDWATCH_NAMESPACE defaults to Catalog.
func NewMetricsClient(ctx context.Context) (*MetricsClient, error) {
	if os.Getenv("CLOUDWATCH_ENABLED") != "true" {
		return &MetricsClient{}, nil
	}

	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	namespace := os.Getenv("CLOUDWATCH_NAMESPACE")
	if namespace == "" {
		namespace = "Catalog"
	}
	return newMetricsClient(cloudwatch.NewFromConfig(cfg), namespace), nil
}

func newMetricsClient(api metricsAPI, namespace string) *MetricsClient {
	return &MetricsClient{api: api, namespace: namespace, enabled: true, now: time.Now}
}

// PutMetric queues a single data point.
func (m *MetricsClient) PutMetric(_ context.Context, metricName string, value float64, unit types.StandardUnit, dimensions map[string]string) error {
	if !m.IsEnabled() {
		return nil
	}

	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	dims := make([]types.Dimension, 0, len(keys))
	for _, k := range keys {
		dims = append(dims, types.Dimension{Name: aws.String(k), Value: aws.String(dimensions[k])})
	}

	m.mu.Lock()
	m.pending = append(m.pending, types.MetricDatum{
		MetricName: aws.String(metricName),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
		Dimensions: dims,
	})
	m.mu.Unlock()
	return nil
}

func (m *MetricsClient) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	return m.PutMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions)
}

// RecordLatency records a duration in milliseconds.
func (m *MetricsClient) RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error {
	return m.PutMetric(ctx, metricName, float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

// Flush publishes every queued data point.
func (m *MetricsClient) Flush(ctx context.Context) error {
	if !m.IsEnabled() {
		return nil
	}
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for len(batch) > 0 {
		n := min(len(batch), maxMetricBatch)
		if _, err := m.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[:n],
		}); err != nil {
			return fmt.Errorf("failed to put metrics: %w", err)
		}
		batch = batch[n:]
	}
	return nil
}

// Run flushes on every tick until ctx is done, then flushes once more.
func (m *MetricsClient) Run(ctx context.Context, every time.Duration) {
	if !m.IsEnabled() {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Flush(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "CloudWatch metrics error: %v\n", err)
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = m.Flush(final)
			cancel()
			return
		}
	}
}

const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	MetricCategoriesChanged = "CategoriesChanged"
	MetricProductsCreated   = "ProductsCreated"
	MetricInventoryCreated  = "InventoryCreated"
	MetricAdminLogins       = "AdminLogins"
	MetricAdminLoginFailed  = "AdminLoginFailed"
	MetricFixturesLoaded    = "FixtureRecordsLoaded"
)
