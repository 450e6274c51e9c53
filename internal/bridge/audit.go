package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// AuditLog is an optional, off-by-default record of connection
// lifecycle events, kept separate from the gateway's slog stream so an
// operator can query "who connected when" without grepping logs.
type AuditLog struct {
	db *sql.DB
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS connections (
	id         TEXT PRIMARY KEY,
	remote_ip  TEXT NOT NULL,
	nick       TEXT NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL,
	ended_at   DATETIME,
	reason     TEXT NOT NULL DEFAULT ''
);`

// OpenAuditLog opens (creating if needed) a sqlite database at path and
// ensures its schema exists.
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("bridge: opening audit db: %w", err)
	}
	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bridge: creating audit schema: %w", err)
	}
	return &AuditLog{db: db}, nil
}

// Close releases the underlying database handle.
func (a *AuditLog) Close() error {
	return a.db.Close()
}

// RecordConnect inserts a new connection row, identified by id (see
// internal/bridge's use of google/uuid for correlation IDs).
func (a *AuditLog) RecordConnect(ctx context.Context, id, remoteIP string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO connections (id, remote_ip, started_at) VALUES (?, ?, ?)`,
		id, remoteIP, time.Now().UTC())
	return err
}

// RecordNick updates the nick associated with an in-progress connection
// once IRC registration completes.
func (a *AuditLog) RecordNick(ctx context.Context, id, nick string) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE connections SET nick = ? WHERE id = ?`, nick, id)
	return err
}

// RecordDisconnect closes out a connection row with its end time and the
// reason the bridge tore it down.
func (a *AuditLog) RecordDisconnect(ctx context.Context, id, reason string) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE connections SET ended_at = ?, reason = ? WHERE id = ?`,
		time.Now().UTC(), reason, id)
	return err
}
