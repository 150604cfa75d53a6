// Package dashboard keeps a local session list in step with the capture
// server by polling, diffing and patching only the rows that changed.
package dashboard

import "time"

// Session mirrors the summary served by GET /api/sessions.
type Session struct {
	ID               uint       `json:"id"`
	SessionTimestamp time.Time  `json:"session_timestamp"`
	DeviceLabel      string     `json:"device_info"`
	DeviceAddress    string     `json:"device_ip"`
	TotalEntryCount  int        `json:"total_barcodes"`
	CreatedAt        time.Time  `json:"created_at"`
	UniqueSymbology  int        `json:"unique_symbologies"`
	ProcessedCount   int        `json:"processed_count"`
	PendingCount     int        `json:"pending_count"`
	FirstScanAt      *time.Time `json:"first_scan"`
	LastScanAt       *time.Time `json:"last_scan"`
	Duration         string     `json:"duration"`
}

type Entry struct {
	ID            uint      `json:"id"`
	SessionID     uint      `json:"session_id"`
	Value         string    `json:"value"`
	SymbologyCode int       `json:"symbology"`
	SymbologyName string    `json:"symbology_name"`
	Quantity      int       `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
	Processed     bool      `json:"processed"`
	Notes         string    `json:"notes"`
}

type SessionDetail struct {
	Session Session `json:"session"`
	Entries []Entry `json:"barcodes"`
}

// changed reports whether a row must be re-rendered. Only the fields that
// move while a session is being worked on are compared.
func changed(old, cur Session) bool {
	return old.TotalEntryCount != cur.TotalEntryCount ||
		old.ProcessedCount != cur.ProcessedCount ||
		old.PendingCount != cur.PendingCount ||
		!sameTime(old.LastScanAt, cur.LastScanAt)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
