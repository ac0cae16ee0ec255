package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// logsAPI is the slice of the CloudWatch Logs client LogSink calls.
type logsAPI interface {
	CreateLogGroup(ctx context.Context, in *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, in *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, in *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, in *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// maxLogBatch stays well under the PutLogEvents limit of 10,000 events.
const maxLogBatch = 500

// LogSink is an io.Writer that buffers log lines and ships them to one
// CloudWatch Logs stream. The zap logger tees its JSON output into it.
type LogSink struct {
	api     logsAPI
	group   string
	stream  string
	enabled bool
	now     func() time.Time

	mu      sync.Mutex
	pending []types.InputLogEvent
}

// NewLogSink creates the sink for serviceName. Nothing is sent unless
// CLOUDWATCH_ENABLED=true; the group comes from CLOUDWATCH_LOG_GROUP and
// retention from CLOUDWATCH_LOG_RETENTION_DAYS.
func NewLogSink(ctx context.Context, serviceName string) (*LogSink, error) {
	if os.Getenv("CLOUDWATCH_ENABLED") != "true" {
		return &LogSink{}, nil
	}

	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	group := os.Getenv("CLOUDWATCH_LOG_GROUP")
	if group == "" {
		group = "/catalog/services"
	}
	retention := int32(30)
	if v, err := strconv.Atoi(os.Getenv("CLOUDWATCH_LOG_RETENTION_DAYS")); err == nil && v > 0 {
		retention = int32(v)
	}

	s := newLogSink(cloudwatchlogs.NewFromConfig(cfg), group, fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()))
	if err := s.open(ctx, retention); err != nil {
		return nil, err
	}
	return s, nil
}

func newLogSink(api logsAPI, group, stream string) *LogSink {
	return &LogSink{
		api:     api,
		group:   group,
		stream:  stream,
		enabled: true,
		now:     time.Now,
	}
}

// open makes sure the group (with its retention) and the stream exist.
func (s *LogSink) open(ctx context.Context, retentionDays int32) error {
	_, err := s.api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{LogGroupName: aws.String(s.group)})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("create log group %s: %w", s.group, err)
	}

	if _, err := s.api.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    aws.String(s.group),
		RetentionInDays: aws.Int32(retentionDays),
	}); err != nil {
		return fmt.Errorf("set retention on %s: %w", s.group, err)
	}

	if _, err := s.api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
	}); err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("create log stream %s: %w", s.stream, err)
	}
	return nil
}

// Write queues one log line. A full batch is sent inline; delivery errors
// go to stderr and never fail the log call.
func (s *LogSink) Write(p []byte) (int, error) {
	if !s.enabled {
		return len(p), nil
	}

	s.mu.Lock()
	s.pending = append(s.pending, types.InputLogEvent{
		Message:   aws.String(string(p)),
		Timestamp: aws.Int64(s.now().UnixMilli()),
	})
	full := len(s.pending) >= maxLogBatch
	s.mu.Unlock()

	if full {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Flush(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
		}
	}
	return len(p), nil
}

// Flush sends every queued line.
func (s *LogSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	_, err := s.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
		LogEvents:     batch,
	})
	return err
}

// Run flushes on every tick until ctx is done, then flushes once more.
func (s *LogSink) Run(ctx context.Context, every time.Duration) {
	if !s.enabled {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = s.Flush(final)
			cancel()
			return
		}
	}
}

func (s *LogSink) IsEnabled() bool {
	return s != nil && s.enabled
}
