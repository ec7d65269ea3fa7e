package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

var demoProtocols = []string{"SIP", "RTP", "HTTP", "HTTPS", "TCP"}

// GenerateDemoSessions produces n synthetic sessions around a Delhi cell
// tower cluster, for exploring the dashboard before any CSV is uploaded.
func GenerateDemoSessions(n int) []domain.Session {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sessions := make([]domain.Session, 0, n)

	for i := 0; i < n; i++ {
		ts := time.Now().Add(-time.Duration(rng.Float64() * float64(7*24*time.Hour)))
		sessions = append(sessions, domain.Session{
			SessionID: fmt.Sprintf("session-%03d", i),
			Protocol:  demoProtocols[rng.Intn(len(demoProtocols))],
			Duration:  rng.Float64() * 10000,
			Bytes:     rng.Float64() * 1000000000,
			Timestamp: ts.UTC().Format(time.RFC3339),
			Src:       demoEndpoint(rng, fmt.Sprintf("node-src-%d", i)),
			Des:       demoEndpoint(rng, fmt.Sprintf("node-des-%d", i)),
		})
	}

	return sessions
}

func demoEndpoint(rng *rand.Rand, nodeID string) domain.Endpoint {
	return domain.Endpoint{
		NodeID:   nodeID,
		IP:       fmt.Sprintf("192.168.%d.%d", rng.Intn(256), rng.Intn(256)),
		Port:     rng.Intn(65535) + 1,
		Phone:    7800000000 + int64(rng.Intn(999999)),
		TowerLat: DefaultTowerLat + (rng.Float64()-0.5)*0.1,
		TowerLon: DefaultTowerLon + (rng.Float64()-0.5)*0.1,
	}
}
