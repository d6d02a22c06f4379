// Package audit appends attempt lifecycle transitions to the event_log
// table so attempt history can be reconstructed after the fact.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

type EventLog struct{ db *sql.DB }

func NewEventLog(db *sql.DB) *EventLog { return &EventLog{db: db} }

// Record appends one event. Best-effort: failures are logged, never
// propagated, so an audit outage cannot block attempt traffic.
func (l *EventLog) Record(ctx context.Context, typ, key string, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("audit: encode %s/%s: %v", typ, key, err)
		return
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(payload), time.Now().Unix())
	if err != nil {
		log.Printf("audit: append %s/%s: %v", typ, key, err)
	}
}
