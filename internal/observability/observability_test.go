package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("decoded", "code", "5339")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "decoded", entry["msg"])
	assert.Equal(t, "5339", entry["code"])
}

func TestNewLogger_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "text")

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DecodedCells.WithLabelValues("3").Inc()
	a.CodecRequests.WithLabelValues("decode", "success").Add(2)

	assert.InDelta(t, 1.0, testutil.ToFloat64(a.DecodedCells.WithLabelValues("3")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(a.CodecRequests.WithLabelValues("decode", "success")), 1e-9)
	assert.Zero(t, testutil.ToFloat64(b.DecodedCells.WithLabelValues("3")))
}
