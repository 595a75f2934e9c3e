package observability

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	otellog "go.opentelemetry.io/otel/log"
)

func TestSeverityMapping(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, severity(zerolog.DebugLevel))
	assert.Equal(t, otellog.SeverityInfo, severity(zerolog.InfoLevel))
	assert.Equal(t, otellog.SeverityWarn, severity(zerolog.WarnLevel))
	assert.Equal(t, otellog.SeverityError, severity(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityFatal, severity(zerolog.PanicLevel))
}

func TestLoggerFromContext_NoSpan(t *testing.T) {
	InitLogger("test", "production")
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, nil, "GET", "/api/v1/businesses", 200, 0)
		RecordDBMetric(ctx, nil, "select", 0)
		RecordCacheHit(ctx, nil, "/api/v1/businesses")
		RecordCacheMiss(ctx, nil, "/api/v1/businesses")
		RecordAggregateRecompute(ctx, nil, "averageRating", nil)
	})
}
