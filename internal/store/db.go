package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-ad-insights/internal/model"
	"go-ad-insights/internal/report"
)

var db *sql.DB

// InitDB opens the SQLite database and creates tables on first use.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS analysis_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS analysis_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			stage TEXT,
			level TEXT,
			message TEXT,
			details TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS stage_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			stage TEXT,
			status TEXT,
			started_at DATETIME,
			ended_at DATETIME,
			rows_processed INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS report_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			group_by TEXT,
			group_label TEXT,
			column_name TEXT,
			summary TEXT,
			created_at DATETIME
		);`,
	}
	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// SaveJob stores a new analysis job.
func SaveJob(jobID string, spec model.AnalysisJobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO analyses (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, specJSON, "pending", now, now)
	return err
}

// SaveJobError records an error for a job.
func SaveJobError(jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO analysis_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// GetJobErrors returns every recorded error for a job, oldest first.
func GetJobErrors(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM analysis_errors WHERE job_id = ? ORDER BY created_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"message":   msg,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// ListJobs returns all analysis jobs with basic info.
func ListJobs() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return jobs, rows.Err()
}

// GetJob fetches the full job spec and status.
func GetJob(jobID string) (map[string]interface{}, error) {
	var specJSON, status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM analyses WHERE id = ?`, jobID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.AnalysisJobSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":        jobID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// UpdateJobStatus updates the job status.
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE analyses SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// SaveStageProgress records a stage transition for a job.
func SaveStageProgress(jobID, stage, status string, startedAt, endedAt *time.Time, rowsProcessed int) error {
	_, err := db.Exec(`INSERT INTO stage_progress (job_id, stage, status, started_at, ended_at, rows_processed) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, status, startedAt, endedAt, rowsProcessed)
	return err
}

// SaveJobLog persists one structured log line for a job.
func SaveJobLog(jobID, stage, level, message string, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO analysis_logs (job_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, level, message, detailsJSON, now)
	return err
}

// GetJobLogs returns a job's persisted log lines, oldest first.
func GetJobLogs(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT stage, level, message, details, created_at FROM analysis_logs WHERE job_id = ? ORDER BY created_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var stage, level, message, detailsJSON string
		var createdAt time.Time
		if err := rows.Scan(&stage, &level, &message, &detailsJSON, &createdAt); err != nil {
			return nil, err
		}
		var details map[string]interface{}
		if err := json.Unmarshal([]byte(detailsJSON), &details); err != nil {
			details = nil
		}
		out = append(out, map[string]interface{}{
			"stage":     stage,
			"level":     level,
			"message":   message,
			"details":   details,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// SaveReportRows persists the flattened report for a job.
func SaveReportRows(jobID string, flat []report.FlatRow) error {
	now := time.Now().UTC()
	for _, row := range flat {
		summaryJSON, err := json.Marshal(row)
		if err != nil {
			return err
		}
		_, err = db.Exec(`INSERT INTO report_rows (job_id, group_by, group_label, column_name, summary, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			jobID, row.GroupBy, row.Group, row.Column, summaryJSON, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetReportRows returns a job's flattened report in insertion order.
func GetReportRows(jobID string) ([]report.FlatRow, error) {
	rows, err := db.Query(`SELECT summary FROM report_rows WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.FlatRow
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, err
		}
		var row report.FlatRow
		if err := json.Unmarshal([]byte(summaryJSON), &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
