package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowlens/flowlens/scanner/graph"
)

// Scan status lifecycle values.
const (
	StatusQueued      = "queued"
	StatusDiscovering = "discovering"
	StatusScanning    = "scanning"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

// ScanRecord is a stored scan summary without the full graph payload.
type ScanRecord struct {
	ScanID          string    `json:"scan_id"`
	RepositoryPath  string    `json:"repository_path"`
	CreatedAt       time.Time `json:"created_at"`
	Status          string    `json:"status"`
	FilesScanned    int       `json:"files_scanned"`
	NodeCount       int       `json:"node_count"`
	EdgeCount       int       `json:"edge_count"`
	DurationSeconds float64   `json:"duration_seconds"`
	Errors          []string  `json:"errors,omitempty"`
}

// CreateScan records a new scan in the queued state.
func (db *DB) CreateScan(scanID, repositoryPath string) error {
	_, err := db.conn.Exec(
		`INSERT INTO scans (scan_id, repository_path, created_at, status)
		 VALUES (?, ?, ?, ?)`,
		scanID, repositoryPath, time.Now().UTC().Format(time.RFC3339), StatusQueued,
	)
	return err
}

// UpdateStatus advances a scan through its lifecycle.
func (db *DB) UpdateStatus(scanID, status string) error {
	result, err := db.conn.Exec(`UPDATE scans SET status = ? WHERE scan_id = ?`, status, scanID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("scan %s not found", scanID)
	}
	return nil
}

// SaveResult marks a scan completed and stores the full result payload.
func (db *DB) SaveResult(result *graph.ScanResult) error {
	payload, err := graph.MarshalResult(result)
	if err != nil {
		return fmt.Errorf("failed to encode scan result: %w", err)
	}
	errorsJSON, err := json.Marshal(result.Errors)
	if err != nil {
		return err
	}
	res, err := db.conn.Exec(
		`UPDATE scans
		 SET status = ?, files_scanned = ?, node_count = ?, edge_count = ?,
		     duration_seconds = ?, errors = ?, graph = ?
		 WHERE scan_id = ?`,
		StatusCompleted, result.FilesScanned, len(result.Nodes), len(result.Edges),
		result.ScanTimeSeconds, string(errorsJSON), string(payload),
		result.ScanID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Scan was never registered, store it in one shot.
		_, err = db.conn.Exec(
			`INSERT INTO scans (scan_id, repository_path, created_at, status,
			                    files_scanned, node_count, edge_count,
			                    duration_seconds, errors, graph)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.ScanID, result.RepositoryPath, time.Now().UTC().Format(time.RFC3339),
			StatusCompleted, result.FilesScanned, len(result.Nodes), len(result.Edges),
			result.ScanTimeSeconds, string(errorsJSON), string(payload),
		)
		return err
	}
	return nil
}

// MarkFailed records a scan failure with its error message.
func (db *DB) MarkFailed(scanID string, scanErr error) error {
	errorsJSON, err := json.Marshal([]string{scanErr.Error()})
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`UPDATE scans SET status = ?, errors = ? WHERE scan_id = ?`,
		StatusFailed, string(errorsJSON), scanID,
	)
	return err
}

// GetScan returns the full stored result for a scan.
func (db *DB) GetScan(scanID string) (*graph.ScanResult, error) {
	var payload string
	err := db.conn.QueryRow(`SELECT graph FROM scans WHERE scan_id = ?`, scanID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan %s not found", scanID)
	}
	if err != nil {
		return nil, err
	}
	result, err := graph.UnmarshalResult([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode scan %s: %w", scanID, err)
	}
	return result, nil
}

// ListScans returns scan summaries for a repository, newest first.
// An empty repositoryPath lists scans across all repositories.
func (db *DB) ListScans(repositoryPath string, limit int) ([]*ScanRecord, error) {
	query := `SELECT scan_id, repository_path, created_at, status, files_scanned,
	                 node_count, edge_count, duration_seconds, errors
	          FROM scans`
	var args []interface{}
	if repositoryPath != "" {
		query += ` WHERE repository_path = ?`
		args = append(args, repositoryPath)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ScanRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (*ScanRecord, error) {
	var record ScanRecord
	var createdAt, errorsJSON string
	if err := rows.Scan(
		&record.ScanID, &record.RepositoryPath, &createdAt, &record.Status,
		&record.FilesScanned, &record.NodeCount, &record.EdgeCount,
		&record.DurationSeconds, &errorsJSON,
	); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
		record.CreatedAt = parsed
	}
	if err := json.Unmarshal([]byte(errorsJSON), &record.Errors); err != nil {
		return nil, err
	}
	return &record, nil
}
