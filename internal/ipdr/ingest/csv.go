package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// Defaults applied to absent or malformed CSV fields. Rows are never
// rejected for a bad field; this table is the ingestion boundary's contract
// and is what guarantees the filter and projection never observe missing
// values.
const (
	DefaultProtocol = "SIP"
	DefaultSrcIP    = "192.168.1.1"
	DefaultDesIP    = "192.168.1.2"
	DefaultPort     = 5060
	DefaultTowerLat = 28.6139
	DefaultTowerLon = 77.209
)

// LoadCSV parses an IPDR CSV with a header row into sessions. Expected
// columns: session_id, protocol, duration, bytes, timestamp,
// src_ip/src_port/src_phone/src_tower_lat/src_tower_lon and the des_*
// counterparts. Absent session ids are synthesized from the row position,
// so two uploads of the same file produce different identities; each upload
// replaces the whole dataset, so no merge ever crosses uploads.
func LoadCSV(r io.Reader) ([]domain.Session, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var sessions []domain.Session
	for row := 0; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// lenient-parse policy: skip unreadable rows, never fail the upload
			continue
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		sessions = append(sessions, domain.Session{
			SessionID: orDefault(field("session_id"), fmt.Sprintf("session-%d", row)),
			Protocol:  orDefault(field("protocol"), DefaultProtocol),
			Duration:  parseFloat(field("duration"), 0),
			Bytes:     parseFloat(field("bytes"), 0),
			Timestamp: orDefault(field("timestamp"), now),
			Src: domain.Endpoint{
				NodeID:   orDefault(field("src_node_id"), fmt.Sprintf("src-%d", row)),
				IP:       orDefault(field("src_ip"), DefaultSrcIP),
				Port:     parseInt(field("src_port"), DefaultPort),
				Phone:    parseInt64(field("src_phone"), 0),
				TowerLat: parseFloat(field("src_tower_lat"), DefaultTowerLat),
				TowerLon: parseFloat(field("src_tower_lon"), DefaultTowerLon),
			},
			Des: domain.Endpoint{
				NodeID:   orDefault(field("des_node_id"), fmt.Sprintf("des-%d", row)),
				IP:       orDefault(field("des_ip"), DefaultDesIP),
				Port:     parseInt(field("des_port"), DefaultPort),
				Phone:    parseInt64(field("des_phone"), 0),
				TowerLat: parseFloat(field("des_tower_lat"), DefaultTowerLat),
				TowerLon: parseFloat(field("des_tower_lon"), DefaultTowerLon),
			},
		})
	}

	return sessions, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func parseInt(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseInt64(v string, def int64) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
