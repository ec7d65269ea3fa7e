package graph

import (
	"math"
	"strconv"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// NodeKey returns the composite identity used to deduplicate endpoints.
func NodeKey(ep domain.Endpoint) string {
	return ep.IP + ":" + strconv.Itoa(ep.Port)
}

// Project folds a session sequence into a renderable graph. It is pure:
// the node set is rebuilt from scratch on every call, nodes appear in
// first-discovery order over the input, and each session yields exactly
// one link. An endpoint's static fields (ip, phone, tower, group) are
// first-seen-wins; sessionCount counts incident links in either role.
//
// When anomalies holds a result with anomaly==1 for a session, both
// incident nodes are marked anomalous and their confidence_score is
// overwritten with that session's score (last-write-wins in fold order).
// Sessions with no result simply leave isAnomaly unset.
func Project(sessions []domain.Session, anomalies map[string]domain.AnomalyResult) domain.Graph {
	nodeIndex := make(map[string]int, len(sessions))
	nodes := make([]domain.Node, 0, len(sessions))
	links := make([]domain.Link, 0, len(sessions))

	ensure := func(ep domain.Endpoint, group int) int {
		key := NodeKey(ep)
		if i, ok := nodeIndex[key]; ok {
			return i
		}
		nodes = append(nodes, domain.Node{
			ID:       key,
			Name:     strconv.FormatInt(ep.Phone, 10),
			Group:    group,
			Phone:    ep.Phone,
			IP:       ep.IP,
			TowerLat: ep.TowerLat,
			TowerLon: ep.TowerLon,
		})
		nodeIndex[key] = len(nodes) - 1
		return len(nodes) - 1
	}

	for _, s := range sessions {
		si := ensure(s.Src, 1)
		di := ensure(s.Des, 2)

		nodes[si].SessionCount++
		nodes[di].SessionCount++

		result, ok := anomalies[s.SessionID]
		isAnomaly := ok && result.Anomaly == 1
		var score float64
		if isAnomaly {
			score = result.ConfidenceScore
			nodes[si].IsAnomaly = true
			nodes[si].ConfidenceScore = score
			nodes[di].IsAnomaly = true
			nodes[di].ConfidenceScore = score
		}

		links = append(links, domain.Link{
			Source:          nodes[si].ID,
			Target:          nodes[di].ID,
			Value:           linkValue(s.Bytes),
			SessionID:       s.SessionID,
			Protocol:        s.Protocol,
			Duration:        s.Duration,
			Bytes:           s.Bytes,
			IsAnomaly:       isAnomaly,
			ConfidenceScore: score,
		})
	}

	return domain.Graph{Nodes: nodes, Links: links}
}

// linkValue scales bytes for visual edge sizing. log(bytes) is negative or
// non-finite for bytes < 1, which must never reach the renderer.
func linkValue(bytes float64) float64 {
	if bytes < 1 {
		return 0
	}
	return math.Log(bytes) / 10
}
