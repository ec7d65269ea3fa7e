package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// stubDetector lets tests script the detection boundary: scripted verdicts,
// forced failures, and a blockable round-trip for in-flight scenarios.
type stubDetector struct {
	fail    bool
	score   float64
	flagged map[string]bool
	started chan struct{}
	release chan struct{}
}

func newStubDetector() *stubDetector {
	return &stubDetector{score: 0.9, flagged: map[string]bool{}}
}

func (s *stubDetector) Detect(ctx context.Context, batch []domain.DetectionRequest) ([]domain.AnomalyResult, error) {
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail {
		return nil, errors.New("detection service unavailable")
	}

	results := make([]domain.AnomalyResult, 0, len(batch))
	for _, req := range batch {
		anomaly := 0
		if s.flagged[req.SessionID] {
			anomaly = 1
		}
		results = append(results, domain.AnomalyResult{
			SessionID: req.SessionID, Anomaly: anomaly, ConfidenceScore: s.score,
		})
	}
	return results, nil
}

func (s *stubDetector) FallbackDetect(ctx context.Context, batch []domain.DetectionRequest) []domain.AnomalyResult {
	results := make([]domain.AnomalyResult, 0, len(batch))
	for _, req := range batch {
		results = append(results, domain.AnomalyResult{
			SessionID: req.SessionID, Anomaly: 1, ConfidenceScore: 0.75,
		})
	}
	return results
}

func testSessions() []domain.Session {
	return []domain.Session{
		{
			SessionID: "s1", Protocol: "SIP", Duration: 60, Bytes: 1000,
			Timestamp: "2024-03-01T10:00:00Z",
			Src:       domain.Endpoint{IP: "10.0.0.1", Port: 1, Phone: 7800000001},
			Des:       domain.Endpoint{IP: "10.0.0.2", Port: 2, Phone: 7800000002},
		},
		{
			SessionID: "s2", Protocol: "HTTP", Duration: 300, Bytes: 50000,
			Timestamp: "2024-03-05T10:00:00Z",
			Src:       domain.Endpoint{IP: "10.0.0.3", Port: 3, Phone: 7811111111},
			Des:       domain.Endpoint{IP: "10.0.0.2", Port: 2, Phone: 7800000002},
		},
	}
}

func TestDashboard_Lifecycle(t *testing.T) {
	stub := newStubDetector()
	stub.flagged["s1"] = true
	d := NewDashboard(stub)

	status, analyzing := d.Status()
	assert.Equal(t, domain.StatusEmpty, status)
	assert.False(t, analyzing)

	d.LoadDataset(testSessions())
	status, _ = d.Status()
	assert.Equal(t, domain.StatusLoaded, status)

	summary, err := d.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 1, summary.AnomalyCount)
	assert.False(t, summary.UsedFallback)

	status, analyzing = d.Status()
	assert.Equal(t, domain.StatusAnalyzed, status)
	assert.False(t, analyzing)

	g := d.Graph()
	require.Len(t, g.Nodes, 3)
	assert.True(t, g.Nodes[0].IsAnomaly)
	assert.True(t, g.Nodes[1].IsAnomaly)
	assert.False(t, g.Nodes[2].IsAnomaly)
}

func TestDashboard_AnalyzeWithoutDataset(t *testing.T) {
	d := NewDashboard(newStubDetector())
	_, err := d.Analyze(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDataset)
}

func TestDashboard_FallbackOnBoundaryFailure(t *testing.T) {
	stub := newStubDetector()
	stub.fail = true
	d := NewDashboard(stub)
	d.LoadDataset(testSessions())

	summary, err := d.Analyze(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.UsedFallback)
	// fallback supplies a complete mapping, never a partial one
	assert.Equal(t, 2, summary.Analyzed)

	stats := d.Stats()
	assert.Equal(t, 2, stats.AnomalyCount)
}

func TestDashboard_RejectsOverlappingAnalysis(t *testing.T) {
	stub := newStubDetector()
	stub.started = make(chan struct{})
	stub.release = make(chan struct{})
	d := NewDashboard(stub)
	d.LoadDataset(testSessions())

	started := stub.started
	done := make(chan error, 1)
	go func() {
		_, err := d.Analyze(context.Background())
		done <- err
	}()

	<-started
	_, err := d.Analyze(context.Background())
	assert.ErrorIs(t, err, domain.ErrAnalysisInFlight)

	close(stub.release)
	require.NoError(t, <-done)
}

func TestDashboard_ReplacementMidAnalysis(t *testing.T) {
	stub := newStubDetector()
	stub.flagged["s1"] = true
	stub.started = make(chan struct{})
	stub.release = make(chan struct{})
	d := NewDashboard(stub)
	d.LoadDataset(testSessions())

	started := stub.started
	done := make(chan error, 1)
	go func() {
		_, err := d.Analyze(context.Background())
		done <- err
	}()

	<-started
	// dataset replaced while the first analysis is in flight; the
	// replacement's own analysis trigger hits the in-flight guard
	replacement := []domain.Session{{
		SessionID: "r1", Protocol: "TCP", Bytes: 10,
		Src: domain.Endpoint{IP: "1.1.1.1", Port: 1},
		Des: domain.Endpoint{IP: "2.2.2.2", Port: 2},
	}}
	d.LoadDataset(replacement)
	_, err := d.Analyze(context.Background())
	assert.ErrorIs(t, err, domain.ErrAnalysisInFlight)

	close(stub.release)
	assert.ErrorIs(t, <-done, domain.ErrStaleAnalysis)

	// the stale run restarts analysis, so the replacement still reaches
	// analyzed on its own instead of sitting at loaded
	require.Eventually(t, func() bool {
		status, analyzing := d.Status()
		return status == domain.StatusAnalyzed && !analyzing
	}, 2*time.Second, 10*time.Millisecond)

	// the stale result set (which flagged s1) must not leak into the
	// replacement's state
	stats := d.Stats()
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 0, stats.AnomalyCount)
}

func TestDashboard_FiltersAffectGraphNotAnalysis(t *testing.T) {
	stub := newStubDetector()
	d := NewDashboard(stub)
	d.LoadDataset(testSessions())

	state := domain.DefaultFilters()
	state.Protocol = "SIP"
	d.SetFilters(state)

	require.Len(t, d.Sessions(), 1)
	assert.Len(t, d.Graph().Links, 1)

	// analysis covers the whole dataset regardless of the active filter
	summary, err := d.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Analyzed)

	d.ResetFilters()
	assert.Len(t, d.Sessions(), 2)
}

func TestDashboard_Selection(t *testing.T) {
	d := NewDashboard(newStubDetector())
	d.LoadDataset(testSessions())

	t.Run("unknown node", func(t *testing.T) {
		assert.ErrorIs(t, d.SelectNode("203.0.113.1:9"), domain.ErrNodeNotFound)
	})

	t.Run("select and read back", func(t *testing.T) {
		require.NoError(t, d.SelectNode("10.0.0.2:2"))
		node, links := d.Selection()
		require.NotNil(t, node)
		assert.Equal(t, "10.0.0.2:2", node.ID)
		assert.Len(t, links, 2)
	})

	t.Run("clear", func(t *testing.T) {
		d.ClearSelection()
		node, _ := d.Selection()
		assert.Nil(t, node)
	})

	t.Run("selection cleared on dataset replacement", func(t *testing.T) {
		require.NoError(t, d.SelectNode("10.0.0.1:1"))
		d.LoadDataset(testSessions())
		node, _ := d.Selection()
		assert.Nil(t, node)
	})
}

func TestDashboard_Stats(t *testing.T) {
	stub := newStubDetector()
	stub.flagged["s2"] = true
	d := NewDashboard(stub)
	d.LoadDataset(testSessions())

	_, err := d.Analyze(context.Background())
	require.NoError(t, err)

	state := domain.DefaultFilters()
	state.Protocol = "HTTP"
	d.SetFilters(state)

	stats := d.Stats()
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.FilteredCount)
	assert.Equal(t, 1, stats.AnomalyCount)
	assert.Equal(t, 2, stats.Protocols)
}

func TestDashboard_AnalyzeAsyncCompletes(t *testing.T) {
	stub := newStubDetector()
	d := NewDashboard(stub)
	d.LoadDataset(testSessions())
	d.AnalyzeAsync()

	require.Eventually(t, func() bool {
		status, analyzing := d.Status()
		return status == domain.StatusAnalyzed && !analyzing
	}, 2*time.Second, 10*time.Millisecond)
}
