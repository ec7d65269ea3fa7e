package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

const (
	// DefaultTimeout is the budget for one detection round-trip.
	DefaultTimeout = 30 * time.Second

	// predictPath is appended to the detector base URL.
	predictPath = "/anomalies/predict"
)

// Detector is the detection boundary capability. Detect posts the full batch
// to the remote service; FallbackDetect synthesizes a complete local result
// set when the remote is unavailable. Tests substitute a deterministic stub.
type Detector interface {
	Detect(ctx context.Context, batch []domain.DetectionRequest) ([]domain.AnomalyResult, error)
	FallbackDetect(ctx context.Context, batch []domain.DetectionRequest) []domain.AnomalyResult
}

// Client talks to the external anomaly detection service.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	fallbackDelay time.Duration
}

// NewClient creates a detection client. A zero timeout falls back to
// DefaultTimeout; fallbackDelay simulates the remote round-trip when
// synthesizing local results, zero disables it.
func NewClient(baseURL string, timeout, fallbackDelay time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: timeout},
		fallbackDelay: fallbackDelay,
	}
}

// Detect posts the whole batch in one call and decodes the per-session
// verdicts. Any transport error or non-2xx status is returned to the caller,
// which is expected to recover via FallbackDetect.
func (c *Client) Detect(ctx context.Context, batch []domain.DetectionRequest) ([]domain.AnomalyResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}

	var results []domain.AnomalyResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}

// BuildRequests maps sessions to detection request records. Sessions without
// a timestamp are stamped with now, formatted "YYYY-MM-DD HH:MM:SS".
func BuildRequests(sessions []domain.Session) []domain.DetectionRequest {
	reqs := make([]domain.DetectionRequest, 0, len(sessions))
	for _, s := range sessions {
		ts := s.Timestamp
		if ts == "" {
			ts = time.Now().UTC().Format("2006-01-02 15:04:05")
		}
		reqs = append(reqs, domain.DetectionRequest{
			Timestamp:    ts,
			SessionID:    s.SessionID,
			SrcIP:        s.Src.IP,
			SrcPort:      s.Src.Port,
			DstIP:        s.Des.IP,
			DstPort:      s.Des.Port,
			Protocol:     s.Protocol,
			DurationSec:  s.Duration,
			Bytes:        s.Bytes,
			PhoneNumber:  strconv.FormatInt(s.Src.Phone, 10),
			CellTowerLat: s.Src.TowerLat,
			CellTowerLon: s.Src.TowerLon,
		})
	}
	return reqs
}
