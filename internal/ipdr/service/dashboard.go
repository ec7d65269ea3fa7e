package service

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/detect"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/filter"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/graph"
)

// Dashboard is the single owner of interaction state: the current session
// set, filter configuration, anomaly mapping, analysis status, and node
// selection. All mutation goes through its mutex; filtering and projection
// are pure and recomputed from a snapshot on every read.
type Dashboard struct {
	mu       sync.Mutex
	detector detect.Detector

	sessions  []domain.Session
	datasetID string // tags in-flight analyses so stale results are dropped
	filters   domain.FilterState
	anomalies map[string]domain.AnomalyResult
	status    string
	analyzing bool
	selected  string
}

// AnalysisSummary reports the outcome of one analysis run.
type AnalysisSummary struct {
	Analyzed     int  `json:"analyzed"`
	AnomalyCount int  `json:"anomaly_count"`
	UsedFallback bool `json:"used_fallback"`
}

// NewDashboard creates a dashboard bound to a detection boundary.
func NewDashboard(detector detect.Detector) *Dashboard {
	return &Dashboard{
		detector:  detector,
		filters:   domain.DefaultFilters(),
		anomalies: make(map[string]domain.AnomalyResult),
		status:    domain.StatusEmpty,
	}
}

// LoadDataset replaces the whole dataset. The prior anomaly mapping and node
// selection are discarded since node identities may no longer exist. Returns
// the new dataset id; the caller decides whether to start analysis.
func (d *Dashboard) LoadDataset(sessions []domain.Session) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessions = sessions
	d.datasetID = uuid.New().String()
	d.anomalies = make(map[string]domain.AnomalyResult)
	d.selected = ""
	if len(sessions) == 0 {
		d.status = domain.StatusEmpty
	} else {
		d.status = domain.StatusLoaded
	}

	log.Printf("[ipdr] dataset replaced: %d sessions dataset_id=%s", len(sessions), d.datasetID)
	return d.datasetID
}

// DatasetID returns the identity tag of the current dataset.
func (d *Dashboard) DatasetID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.datasetID
}

// Analyze runs one detection round-trip over the whole current dataset,
// independent of the active filter. On boundary failure the deterministic
// fallback supplies a complete result set, so the mapping is always
// wholesale-replaced, never left partial. A second trigger while one run is
// in flight returns domain.ErrAnalysisInFlight. Results tagged with a
// dataset id that is no longer current are dropped with
// domain.ErrStaleAnalysis, and a fresh run is started for the replacement
// dataset, whose own analysis trigger was rejected by the in-flight guard.
func (d *Dashboard) Analyze(ctx context.Context) (*AnalysisSummary, error) {
	d.mu.Lock()
	if len(d.sessions) == 0 {
		d.mu.Unlock()
		return nil, domain.ErrNoDataset
	}
	if d.analyzing {
		d.mu.Unlock()
		return nil, domain.ErrAnalysisInFlight
	}
	d.analyzing = true
	d.status = domain.StatusAnalyzing
	datasetID := d.datasetID
	snapshot := make([]domain.Session, len(d.sessions))
	copy(snapshot, d.sessions)
	d.mu.Unlock()

	batch := detect.BuildRequests(snapshot)
	usedFallback := false
	results, err := d.detector.Detect(ctx, batch)
	if err != nil {
		log.Printf("[ipdr] detection boundary failed, using fallback: %v", err)
		results = d.detector.FallbackDetect(ctx, batch)
		usedFallback = true
	}

	mapping := make(map[string]domain.AnomalyResult, len(results))
	anomalyCount := 0
	for _, r := range results {
		mapping[r.SessionID] = r
		if r.Anomaly == 1 {
			anomalyCount++
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.analyzing = false
	if d.datasetID != datasetID {
		// dataset was replaced mid-analysis; this result set is stale. The
		// replacement's analysis trigger hit the in-flight guard, so restart
		// it here or the new dataset would sit unanalyzed at "loaded".
		log.Printf("[ipdr] dropping stale analysis for dataset_id=%s", datasetID)
		if len(d.sessions) > 0 && d.status == domain.StatusLoaded {
			d.AnalyzeAsync()
		}
		return nil, domain.ErrStaleAnalysis
	}
	d.anomalies = mapping
	d.status = domain.StatusAnalyzed

	log.Printf("[ipdr] analysis complete: %d anomalies in %d sessions fallback=%v",
		anomalyCount, len(results), usedFallback)
	return &AnalysisSummary{
		Analyzed:     len(results),
		AnomalyCount: anomalyCount,
		UsedFallback: usedFallback,
	}, nil
}

// AnalyzeAsync starts an analysis in the background, used after dataset
// replacement. Errors other than the in-flight guard are already recovered
// by the fallback inside Analyze.
func (d *Dashboard) AnalyzeAsync() {
	go func() {
		if _, err := d.Analyze(context.Background()); err != nil {
			log.Printf("[ipdr] background analysis skipped: %v", err)
		}
	}()
}

// SetFilters replaces the filter configuration. No validation: an inverted
// range matches nothing, which is acceptable.
func (d *Dashboard) SetFilters(state domain.FilterState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = state
}

// ResetFilters restores the initial filter configuration.
func (d *Dashboard) ResetFilters() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = domain.DefaultFilters()
}

// Filters returns the active filter configuration.
func (d *Dashboard) Filters() domain.FilterState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filters
}

// Sessions returns the filtered session sequence.
func (d *Dashboard) Sessions() []domain.Session {
	sessions, anomalies, filters := d.snapshot()
	return filter.Apply(sessions, anomalies, filters)
}

// Graph projects the filtered sessions with the current anomaly mapping.
func (d *Dashboard) Graph() domain.Graph {
	sessions, anomalies, filters := d.snapshot()
	return graph.Project(filter.Apply(sessions, anomalies, filters), anomalies)
}

// SelectNode marks a node of the current graph as selected. Selection is a
// pure state update: it affects neither filtering nor projection.
func (d *Dashboard) SelectNode(id string) error {
	g := d.Graph()
	found := false
	for _, n := range g.Nodes {
		if n.ID == id {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNodeNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = id
	return nil
}

// ClearSelection closes the detail view.
func (d *Dashboard) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = ""
}

// Selection returns the selected node and its incident links, or nil when
// nothing is selected or the node left the graph under a filter change.
func (d *Dashboard) Selection() (*domain.Node, []domain.Link) {
	d.mu.Lock()
	selected := d.selected
	d.mu.Unlock()
	if selected == "" {
		return nil, nil
	}

	g := d.Graph()
	var node *domain.Node
	for i := range g.Nodes {
		if g.Nodes[i].ID == selected {
			node = &g.Nodes[i]
			break
		}
	}
	if node == nil {
		return nil, nil
	}

	var incident []domain.Link
	for _, l := range g.Links {
		if l.Source == selected || l.Target == selected {
			incident = append(incident, l)
		}
	}
	return node, incident
}

// Status reports the dataset lifecycle state and the analyzing flag.
func (d *Dashboard) Status() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, d.analyzing
}

// Stats summarizes the current dataset for the dashboard header.
func (d *Dashboard) Stats() domain.Stats {
	sessions, anomalies, filters := d.snapshot()

	protocols := make(map[string]struct{})
	for _, s := range sessions {
		protocols[s.Protocol] = struct{}{}
	}
	anomalyCount := 0
	for _, r := range anomalies {
		if r.Anomaly == 1 {
			anomalyCount++
		}
	}

	return domain.Stats{
		TotalSessions: len(sessions),
		FilteredCount: len(filter.Apply(sessions, anomalies, filters)),
		AnomalyCount:  anomalyCount,
		Protocols:     len(protocols),
	}
}

// Snapshot returns a copy of the full (unfiltered) dataset and its anomaly
// count, for saving to history.
func (d *Dashboard) Snapshot() ([]domain.Session, int) {
	sessions, anomalies, _ := d.snapshot()
	anomalyCount := 0
	for _, r := range anomalies {
		if r.Anomaly == 1 {
			anomalyCount++
		}
	}
	return sessions, anomalyCount
}

func (d *Dashboard) snapshot() ([]domain.Session, map[string]domain.AnomalyResult, domain.FilterState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessions := make([]domain.Session, len(d.sessions))
	copy(sessions, d.sessions)
	anomalies := make(map[string]domain.AnomalyResult, len(d.anomalies))
	for k, v := range d.anomalies {
		anomalies[k] = v
	}
	return sessions, anomalies, d.filters
}
