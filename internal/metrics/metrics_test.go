package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordDecode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordDecode("2428", "header-only", 2428, 0.001)
	m.RecordDecode("2428", "header-only", 2432, 0.001)
	m.RecordDecode("2420", "complete", 2420, 0.002)

	require.Equal(t, 2.0, testutil.ToFloat64(m.DecodesTotal.WithLabelValues("2428", "header-only")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DecodesTotal.WithLabelValues("2420", "complete")))
	require.Equal(t, float64(2428+2432+2420), testutil.ToFloat64(m.BytesTotal))
	require.Equal(t, 1, testutil.CollectAndCount(m.DecodeDuration))
}

func TestRecordFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordFailure("unsupported_length", 0.0001)
	m.RecordFailure("unsupported_length", 0.0001)
	m.RecordFailure("padding_not_zero", 0.0001)

	require.Equal(t, 2.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("unsupported_length")))
	require.Equal(t, 2, testutil.CollectAndCount(m.FailuresTotal))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordDecode("2428", "header-only", 2428, 0)
		m.RecordFailure("io", 0)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordDecode("7480", "partial", 7480, 0.01)

	path := filepath.Join(t.TempDir(), "parm.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `parm_decodes_total{status="partial",variant="7480"} 1`)
	require.Contains(t, string(data), "parm_bytes_total 7480")
}
