package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

func testBatch(n int) []domain.DetectionRequest {
	batch := make([]domain.DetectionRequest, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, domain.DetectionRequest{
			SessionID: "session-" + string(rune('a'+i)),
			Timestamp: "2024-03-01 10:00:00",
			SrcIP:     "10.0.0.1",
			DstIP:     "10.0.0.2",
			Protocol:  "SIP",
		})
	}
	return batch
}

func TestClient_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anomalies/predict" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		var batch []domain.DetectionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))

		results := make([]domain.AnomalyResult, 0, len(batch))
		for _, req := range batch {
			results = append(results, domain.AnomalyResult{
				SessionID: req.SessionID, Anomaly: 1, ConfidenceScore: 0.85,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 0)
	results, err := client.Detect(context.Background(), testBatch(3))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Anomaly)
	assert.Equal(t, 0.85, results[0].ConfidenceScore)
}

func TestClient_DetectNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 0)
	_, err := client.Detect(context.Background(), testBatch(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_DetectUnreachableIsError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 0, 0)
	_, err := client.Detect(context.Background(), testBatch(1))
	require.Error(t, err)
}

func TestClient_FallbackDetect(t *testing.T) {
	client := NewClient("http://unused", 0, 0)
	batch := testBatch(20)

	results := client.FallbackDetect(context.Background(), batch)

	require.Len(t, results, len(batch))
	for i, r := range results {
		assert.Equal(t, batch[i].SessionID, r.SessionID)
		assert.Contains(t, []int{0, 1}, r.Anomaly)
		assert.GreaterOrEqual(t, r.ConfidenceScore, 0.7)
		assert.LessOrEqual(t, r.ConfidenceScore, 1.0)
	}

	t.Run("deterministic for the same batch", func(t *testing.T) {
		again := client.FallbackDetect(context.Background(), batch)
		assert.Equal(t, results, again)
	})
}

func TestBuildRequests(t *testing.T) {
	sessions := []domain.Session{
		{
			SessionID: "s1", Protocol: "RTP", Duration: 42.5, Bytes: 1234,
			Timestamp: "2024-03-01 10:00:00",
			Src:       domain.Endpoint{IP: "10.0.0.1", Port: 5060, Phone: 7800000001, TowerLat: 28.61, TowerLon: 77.2},
			Des:       domain.Endpoint{IP: "10.0.0.2", Port: 5061, Phone: 7800000002},
		},
	}

	reqs := BuildRequests(sessions)

	require.Len(t, reqs, 1)
	r := reqs[0]
	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, "10.0.0.1", r.SrcIP)
	assert.Equal(t, 5060, r.SrcPort)
	assert.Equal(t, "10.0.0.2", r.DstIP)
	assert.Equal(t, 5061, r.DstPort)
	assert.Equal(t, "RTP", r.Protocol)
	assert.Equal(t, 42.5, r.DurationSec)
	assert.Equal(t, "7800000001", r.PhoneNumber) // source phone, stringified
	assert.Equal(t, 28.61, r.CellTowerLat)
}

func TestBuildRequests_StampsMissingTimestamp(t *testing.T) {
	reqs := BuildRequests([]domain.Session{{SessionID: "s1"}})
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].Timestamp)
}
