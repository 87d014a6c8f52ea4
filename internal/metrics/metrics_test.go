package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDatagram(t *testing.T) {
	initialCount := testutil.ToFloat64(datagramsReceivedTotal)
	initialBytes := testutil.ToFloat64(datagramBytesTotal)

	RecordDatagram(1347)
	RecordDatagram(32)

	assert.Equal(t, initialCount+2, testutil.ToFloat64(datagramsReceivedTotal))
	assert.Equal(t, initialBytes+1379, testutil.ToFloat64(datagramBytesTotal))

	var m dto.Metric
	require.NoError(t, datagramSize.Write(&m))
	assert.GreaterOrEqual(t, m.Histogram.GetSampleCount(), uint64(2))
}

func TestRecordDecoded(t *testing.T) {
	initial := testutil.ToFloat64(packetsDecodedTotal.WithLabelValues("lap"))

	RecordDecoded("lap", 100)
	RecordDecoded("lap", 101)

	assert.Equal(t, initial+2, testutil.ToFloat64(packetsDecodedTotal.WithLabelValues("lap")))
	assert.Equal(t, float64(101), testutil.ToFloat64(lastFrameID.WithLabelValues("lap")))
}

func TestIncrementIgnored(t *testing.T) {
	reasons := []string{"too_short", "length_mismatch", "unrecognized_type"}

	for _, reason := range reasons {
		initial := testutil.ToFloat64(packetsIgnoredTotal.WithLabelValues(reason))
		IncrementIgnored(reason)
		assert.Equal(t, initial+1, testutil.ToFloat64(packetsIgnoredTotal.WithLabelValues(reason)), reason)
	}
}

func TestHistoryMetrics(t *testing.T) {
	initial := testutil.ToFloat64(historyEvictionsTotal.WithLabelValues("motion"))

	IncrementHistoryEviction("motion")
	SetHistorySize("motion", 600)

	assert.Equal(t, initial+1, testutil.ToFloat64(historyEvictionsTotal.WithLabelValues("motion")))
	assert.Equal(t, float64(600), testutil.ToFloat64(historySize.WithLabelValues("motion")))
}

func TestSetActiveSessions(t *testing.T) {
	for _, count := range []int{0, 2, 1, 0} {
		SetActiveSessions(count)
		assert.Equal(t, float64(count), testutil.ToFloat64(sessionsActive))
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	initial := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/sessions", "200"))

	RecordHTTPRequest("GET", "/api/v1/sessions", "200", 0.002)

	assert.Equal(t, initial+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/sessions", "200")))
}

func TestConcurrentMetricsUpdates(t *testing.T) {
	initialDecoded := testutil.ToFloat64(packetsDecodedTotal.WithLabelValues("concurrent"))
	initialPublished := testutil.ToFloat64(publishedTotal.WithLabelValues("concurrent"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordDecoded("concurrent", uint32(j))
				IncrementPublished("concurrent")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, initialDecoded+1000, testutil.ToFloat64(packetsDecodedTotal.WithLabelValues("concurrent")))
	assert.Equal(t, initialPublished+1000, testutil.ToFloat64(publishedTotal.WithLabelValues("concurrent")))
}
