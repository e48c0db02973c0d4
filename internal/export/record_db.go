package export

import (
	"database/sql"
	"fmt"

	"github.com/golang/glog"
	_ "modernc.org/sqlite"

	"github.com/deploymenttheory/go-mfs/internal/services"
)

var schema = []string{
	`DROP TABLE IF EXISTS files`,
	`DROP TABLE IF EXISTS records`,
	`DROP TABLE IF EXISTS diagnostics`,
	`CREATE TABLE files (
		path TEXT NOT NULL PRIMARY KEY,
		source TEXT,
		is_directory INTEGER,
		low_level_index INTEGER,
		file_id INTEGER,
		size INTEGER,
		access INTEGER,
		owner_uid INTEGER,
		owner_gid INTEGER,
		deploy_options INTEGER,
		ar_index INTEGER,
		svn INTEGER
	)`,
	`CREATE TABLE records (
		sequence INTEGER NOT NULL PRIMARY KEY,
		source TEXT,
		folder TEXT,
		name TEXT,
		type TEXT,
		file_id INTEGER,
		access INTEGER,
		owner_uid INTEGER,
		owner_gid INTEGER,
		data_offset INTEGER,
		data_size INTEGER
	)`,
	`CREATE TABLE diagnostics (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		severity TEXT,
		component TEXT,
		message TEXT
	)`,
	`CREATE INDEX idx_records_folder ON records(folder)`,
}

// RecordCounts is the number of rows written per table.
type RecordCounts struct {
	Files       int
	Records     int
	Diagnostics int
}

// WriteRecordDB stores the file tree, the visited record log and the
// diagnostics of result in a SQLite database at dbPath. Existing tables are
// replaced.
func WriteRecordDB(dbPath string, result *services.Result) (RecordCounts, error) {
	var counts RecordCounts

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return counts, fmt.Errorf("failed to open record database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return counts, fmt.Errorf("failed to connect to record database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return counts, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return counts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if counts.Files, err = insertFiles(tx, result.Files); err != nil {
		return counts, err
	}
	if counts.Records, err = insertRecords(tx, result.Records); err != nil {
		return counts, err
	}
	if counts.Diagnostics, err = insertDiagnostics(tx, result); err != nil {
		return counts, err
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("failed to commit record database: %w", err)
	}

	glog.V(1).Infof("record database %s: %d files, %d records, %d diagnostics",
		dbPath, counts.Files, counts.Records, counts.Diagnostics)
	return counts, nil
}

func insertFiles(tx *sql.Tx, files []*services.FileNode) (int, error) {
	stmt, err := tx.Prepare(`INSERT INTO files (path, source, is_directory, low_level_index, file_id, size,
		access, owner_uid, owner_gid, deploy_options, ar_index, svn) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		var arIndex, svn interface{}
		if f.Integrity != nil {
			arIndex = f.Integrity.ARIndex
			svn = f.Integrity.SVN
		}
		if _, err := stmt.Exec(f.Path, f.Source, f.IsDirectory, f.LowLevelIndex, f.FileID, f.Size(),
			uint16(f.Access), f.OwnerUserID, f.OwnerGroupID, uint16(f.DeployOptions), arIndex, svn); err != nil {
			return 0, fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}
	return len(files), nil
}

func insertRecords(tx *sql.Tx, records []services.VisitedRecord) (int, error) {
	stmt, err := tx.Prepare(`INSERT INTO records (sequence, source, folder, name, type, file_id, access,
		owner_uid, owner_gid, data_offset, data_size) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Sequence, r.Source, r.Folder, r.Name, r.Type.String(), r.FileID,
			uint16(r.Access), r.OwnerUserID, r.OwnerGroupID, r.Offset, r.Size); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", r.Sequence, err)
		}
	}
	return len(records), nil
}

func insertDiagnostics(tx *sql.Tx, result *services.Result) (int, error) {
	stmt, err := tx.Prepare(`INSERT INTO diagnostics (severity, component, message) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare diagnostic insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range result.Diagnostics {
		if _, err := stmt.Exec(d.Severity.String(), d.Component, d.Message); err != nil {
			return 0, fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}
	return len(result.Diagnostics), nil
}
