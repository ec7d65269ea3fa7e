package domain

// Endpoint is one side of a recorded communication event.
type Endpoint struct {
	NodeID   string  `json:"node_id"`
	IP       string  `json:"ip"`
	Port     int     `json:"port"`
	Phone    int64   `json:"phone"`
	TowerLat float64 `json:"tower_lat"`
	TowerLon float64 `json:"tower_lon"`
}

// Session is one IPDR record. SessionID is unique within a loaded dataset;
// the ingestion boundary synthesizes one from the row position when absent.
type Session struct {
	SessionID string   `json:"session_id"`
	Protocol  string   `json:"protocol"`
	Duration  float64  `json:"duration"` // seconds
	Bytes     float64  `json:"bytes"`
	Timestamp string   `json:"timestamp,omitempty"` // ISO-8601
	Src       Endpoint `json:"src"`
	Des       Endpoint `json:"des"`
}

// Node is a deduplicated endpoint, keyed by "ip:port".
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Group    int     `json:"group"` // 1 = first seen as source, 2 = as destination
	Phone    int64   `json:"phone"`
	IP       string  `json:"ip"`
	TowerLat float64 `json:"tower_lat"`
	TowerLon float64 `json:"tower_lon"`
	// SessionCount is the number of links incident to this node in either role.
	SessionCount int  `json:"sessionCount"`
	IsAnomaly    bool `json:"isAnomaly"`
	// ConfidenceScore is last-write-wins across anomalous incident sessions,
	// in fold order. Not a max or mean.
	ConfidenceScore float64 `json:"confidence_score"`
}

// Link is one rendered edge, one-to-one with a Session.
type Link struct {
	Source          string  `json:"source"`
	Target          string  `json:"target"`
	Value           float64 `json:"value"` // log(bytes)/10, clamped for bytes < 1
	SessionID       string  `json:"session_id"`
	Protocol        string  `json:"protocol"`
	Duration        float64 `json:"duration"`
	Bytes           float64 `json:"bytes"`
	IsAnomaly       bool    `json:"isAnomaly"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Graph is the projection output consumed verbatim by the rendering surface.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// AnomalyResult is one detection verdict, keyed by session id.
type AnomalyResult struct {
	SessionID       string  `json:"session_id"`
	Anomaly         int     `json:"anomaly"` // 0 or 1
	ConfidenceScore float64 `json:"confidence_score"`
}

// DetectionRequest is one entry of the batch posted to the detection boundary.
type DetectionRequest struct {
	Timestamp    string  `json:"timestamp"` // "YYYY-MM-DD HH:MM:SS"
	SessionID    string  `json:"session_id"`
	SrcIP        string  `json:"src_ip"`
	SrcPort      int     `json:"src_port"`
	DstIP        string  `json:"dst_ip"`
	DstPort      int     `json:"dst_port"`
	Protocol     string  `json:"protocol"`
	DurationSec  float64 `json:"duration_sec"`
	Bytes        float64 `json:"bytes"`
	PhoneNumber  string  `json:"phone_number"`
	CellTowerLat float64 `json:"cell_tower_lat"`
	CellTowerLon float64 `json:"cell_tower_lon"`
}

// FilterState is the user-selected predicate configuration. Inverted ranges
// are not validated; they simply match nothing.
type FilterState struct {
	Search            string  `json:"search"`
	Protocol          string  `json:"protocol"`
	MinBytes          float64 `json:"minBytes"`
	MaxBytes          float64 `json:"maxBytes"`
	MinDuration       float64 `json:"minDuration"`
	MaxDuration       float64 `json:"maxDuration"`
	StartDate         string  `json:"startDate"` // "YYYY-MM-DD", empty = unbounded
	EndDate           string  `json:"endDate"`   // inclusive, end of day
	ShowAnomaliesOnly bool    `json:"showAnomaliesOnly"`
}

// DefaultFilters mirrors the dashboard's initial filter configuration.
func DefaultFilters() FilterState {
	return FilterState{
		MinBytes:    0,
		MaxBytes:    999999999,
		MinDuration: 0,
		MaxDuration: 99999,
	}
}

// Dataset lifecycle status constants.
const (
	StatusEmpty     = "empty"
	StatusLoaded    = "loaded"
	StatusAnalyzing = "analyzing"
	StatusAnalyzed  = "analyzed"
)

// Stats summarizes the current dataset for the dashboard header.
type Stats struct {
	TotalSessions int `json:"total_sessions"`
	FilteredCount int `json:"filtered_count"`
	AnomalyCount  int `json:"anomaly_count"`
	Protocols     int `json:"protocols"`
}

// HistoryEntry is one saved dataset snapshot.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Timestamp    string    `json:"timestamp"`
	SessionCount int       `json:"sessionCount"`
	AnomalyCount int       `json:"anomalyCount"`
	Sessions     []Session `json:"sessions,omitempty"`
}
