package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// timestamp layouts accepted on sessions, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Apply returns the sessions matching every predicate of state, preserving
// input order. It never fails: malformed numerics are normalized to zero at
// the ingestion boundary before this sees them.
//
// Sessions without a timestamp are compared against time.Now() at evaluation
// time, so they are unstable under the date predicate across repeated
// evaluations. Inherited behavior; ingestion stamps its own rows, so only
// sessions injected without a timestamp hit this path.
func Apply(sessions []domain.Session, anomalies map[string]domain.AnomalyResult, state domain.FilterState) []domain.Session {
	out := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if Matches(s, anomalies, state) {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether one session passes the full predicate conjunction.
func Matches(s domain.Session, anomalies map[string]domain.AnomalyResult, state domain.FilterState) bool {
	if state.Search != "" && !matchesSearch(s, state.Search) {
		return false
	}

	if state.Protocol != "" && s.Protocol != state.Protocol {
		return false
	}

	if s.Bytes < state.MinBytes || s.Bytes > state.MaxBytes {
		return false
	}

	if s.Duration < state.MinDuration || s.Duration > state.MaxDuration {
		return false
	}

	if state.StartDate != "" || state.EndDate != "" {
		ts := sessionTime(s)
		if state.StartDate != "" {
			if start, err := time.Parse("2006-01-02", state.StartDate); err == nil && ts.Before(start) {
				return false
			}
		}
		if state.EndDate != "" {
			// endDate is inclusive: compare against end of that day
			if end, err := time.Parse("2006-01-02", state.EndDate); err == nil {
				end = end.Add(24*time.Hour - time.Second)
				if ts.After(end) {
					return false
				}
			}
		}
	}

	if state.ShowAnomaliesOnly {
		// fail-closed: no result means excluded
		result, ok := anomalies[s.SessionID]
		if !ok || result.Anomaly != 1 {
			return false
		}
	}

	return true
}

func matchesSearch(s domain.Session, search string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		s.Src.IP,
		s.Des.IP,
		strconv.FormatInt(s.Src.Phone, 10),
		strconv.FormatInt(s.Des.Phone, 10),
		s.SessionID,
		s.Protocol,
	}, " "))
	return strings.Contains(haystack, strings.ToLower(search))
}

func sessionTime(s domain.Session) time.Time {
	if s.Timestamp == "" {
		return time.Now()
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s.Timestamp); err == nil {
			return ts
		}
	}
	return time.Now()
}
