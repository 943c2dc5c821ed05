// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace stores typed, versioned objects in numbered workspaces.
// Objects are addressed by <workspace>/<object>/<version> references; every
// save of an existing name creates a new version.
package workspace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

const dbFile = "workspace.db"

// ErrNotFound is returned when a workspace, object, or version does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the workspace SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the workspace database at cfg.Dir/workspace.db
// and creates the schema if it does not exist.
func NewStore(cfg types.WorkspaceConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "workspace"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Batch runs save from several goroutines; one connection serializes them.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS workspaces (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS objects (
			ws_id INTEGER NOT NULL REFERENCES workspaces(id),
			obj_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (ws_id, obj_id),
			UNIQUE (ws_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS object_versions (
			ws_id INTEGER NOT NULL,
			obj_id INTEGER NOT NULL,
			version INTEGER NOT NULL,
			type TEXT NOT NULL,
			data TEXT NOT NULL,
			size INTEGER NOT NULL,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (ws_id, obj_id, version),
			FOREIGN KEY (ws_id, obj_id) REFERENCES objects(ws_id, obj_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_object_versions_type ON object_versions(type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// WorkspaceInfo identifies a workspace.
type WorkspaceInfo struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// CreateWorkspace creates the named workspace, or returns the existing one.
func (s *Store) CreateWorkspace(ctx context.Context, name string) (WorkspaceInfo, error) {
	if name == "" {
		return WorkspaceInfo{}, fmt.Errorf("workspace name is required")
	}
	if _, ok := numericID(name); ok {
		return WorkspaceInfo{}, fmt.Errorf("workspace name %q must not be purely numeric", name)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return WorkspaceInfo{}, fmt.Errorf("creating workspace %s: %w", name, err)
	}

	info := WorkspaceInfo{Name: name}
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM workspaces WHERE name = ?`, name,
	).Scan(&info.ID); err != nil {
		return WorkspaceInfo{}, fmt.Errorf("reading workspace %s: %w", name, err)
	}
	return info, nil
}

// WorkspaceID resolves a workspace name or numeric id to its id. A value made
// only of digits is taken as an id.
func (s *Store) WorkspaceID(ctx context.Context, nameOrID string) (int64, error) {
	var (
		id  int64
		err error
	)
	if n, ok := numericID(nameOrID); ok {
		err = s.db.QueryRowContext(ctx, `SELECT id FROM workspaces WHERE id = ?`, n).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT id FROM workspaces WHERE name = ?`, nameOrID).Scan(&id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("workspace %q: %w", nameOrID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving workspace %q: %w", nameOrID, err)
	}
	return id, nil
}

// SaveObject stores data (marshaled to JSON) under name in workspace wsID.
// A new name gets the next object id in the workspace and version 1; an
// existing name gets its next version.
func (s *Store) SaveObject(ctx context.Context, wsID int64, objType, name string, data any) (types.ObjectInfo, error) {
	if name == "" {
		return types.ObjectInfo{}, fmt.Errorf("object name is required")
	}
	if _, ok := numericID(name); ok {
		return types.ObjectInfo{}, fmt.Errorf("object name %q must not be purely numeric", name)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return types.ObjectInfo{}, fmt.Errorf("marshaling %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.ObjectInfo{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	info := types.ObjectInfo{
		Name:        name,
		Type:        objType,
		WorkspaceID: wsID,
		SaveDate:    time.Now().UTC(),
		Size:        int64(len(payload)),
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT name FROM workspaces WHERE id = ?`, wsID,
	).Scan(&info.WorkspaceName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ObjectInfo{}, fmt.Errorf("workspace %d: %w", wsID, ErrNotFound)
		}
		return types.ObjectInfo{}, fmt.Errorf("reading workspace %d: %w", wsID, err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT obj_id FROM objects WHERE ws_id = ? AND name = ?`, wsID, name,
	).Scan(&info.ObjectID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(obj_id), 0) + 1 FROM objects WHERE ws_id = ?`, wsID,
		).Scan(&info.ObjectID); err != nil {
			return types.ObjectInfo{}, fmt.Errorf("allocating object id: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO objects (ws_id, obj_id, name) VALUES (?, ?, ?)`, wsID, info.ObjectID, name,
		); err != nil {
			return types.ObjectInfo{}, fmt.Errorf("inserting object %s: %w", name, err)
		}
	case err != nil:
		return types.ObjectInfo{}, fmt.Errorf("looking up object %s: %w", name, err)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM object_versions WHERE ws_id = ? AND obj_id = ?`,
		wsID, info.ObjectID,
	).Scan(&info.Version); err != nil {
		return types.ObjectInfo{}, fmt.Errorf("allocating version: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO object_versions (ws_id, obj_id, version, type, data, size, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wsID, info.ObjectID, info.Version, objType, string(payload), info.Size,
		info.SaveDate.Format(time.RFC3339Nano),
	); err != nil {
		return types.ObjectInfo{}, fmt.Errorf("inserting version of %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return types.ObjectInfo{}, fmt.Errorf("committing %s: %w", name, err)
	}
	return info, nil
}

// GetObject fetches the object a reference points to.
func (s *Store) GetObject(ctx context.Context, ref string) (types.Object, error) {
	info, data, err := s.lookup(ctx, ref, true)
	if err != nil {
		return types.Object{}, err
	}
	return types.Object{Info: info, Data: json.RawMessage(data)}, nil
}

// GetObjectInfo fetches only the metadata of the object a reference points to.
func (s *Store) GetObjectInfo(ctx context.Context, ref string) (types.ObjectInfo, error) {
	info, _, err := s.lookup(ctx, ref, false)
	return info, err
}

// ListObjects returns the latest version of every object in a workspace,
// ordered by object id.
func (s *Store) ListObjects(ctx context.Context, workspace string) ([]types.ObjectInfo, error) {
	wsID, err := s.WorkspaceID(ctx, workspace)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT o.obj_id, o.name, v.type, v.version, v.size, v.saved_at, w.id, w.name
		 FROM objects o
		 JOIN workspaces w ON w.id = o.ws_id
		 JOIN object_versions v ON v.ws_id = o.ws_id AND v.obj_id = o.obj_id
		 WHERE o.ws_id = ?
		   AND v.version = (SELECT MAX(version) FROM object_versions
		                    WHERE ws_id = o.ws_id AND obj_id = o.obj_id)
		 ORDER BY o.obj_id`, wsID)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	defer rows.Close()

	var infos []types.ObjectInfo
	for rows.Next() {
		info, err := scanInfo(rows.Scan, nil)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// lookup resolves ref and reads the matching version row.
func (s *Store) lookup(ctx context.Context, ref string, withData bool) (types.ObjectInfo, string, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return types.ObjectInfo{}, "", err
	}
	wsID, err := s.WorkspaceID(ctx, r.Workspace)
	if err != nil {
		return types.ObjectInfo{}, "", err
	}

	var objID int64
	if n, ok := numericID(r.Object); ok {
		err = s.db.QueryRowContext(ctx,
			`SELECT obj_id FROM objects WHERE ws_id = ? AND obj_id = ?`, wsID, n).Scan(&objID)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT obj_id FROM objects WHERE ws_id = ? AND name = ?`, wsID, r.Object).Scan(&objID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return types.ObjectInfo{}, "", fmt.Errorf("object %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return types.ObjectInfo{}, "", fmt.Errorf("resolving object %s: %w", ref, err)
	}

	cols := `o.obj_id, o.name, v.type, v.version, v.size, v.saved_at, w.id, w.name`
	if withData {
		cols += `, v.data`
	}
	query := `SELECT ` + cols + `
		 FROM objects o
		 JOIN workspaces w ON w.id = o.ws_id
		 JOIN object_versions v ON v.ws_id = o.ws_id AND v.obj_id = o.obj_id
		 WHERE o.ws_id = ? AND o.obj_id = ?`
	args := []any{wsID, objID}
	if r.Version > 0 {
		query += ` AND v.version = ?`
		args = append(args, r.Version)
	} else {
		query += ` ORDER BY v.version DESC LIMIT 1`
	}

	var (
		data    string
		dataDst *string
	)
	if withData {
		dataDst = &data
	}
	info, err := scanInfo(s.db.QueryRowContext(ctx, query, args...).Scan, dataDst)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ObjectInfo{}, "", fmt.Errorf("object %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return types.ObjectInfo{}, "", err
	}
	return info, data, nil
}

// scanInfo reads the common object columns, plus data when it is non-nil.
func scanInfo(scan func(dest ...any) error, data *string) (types.ObjectInfo, error) {
	var (
		info    types.ObjectInfo
		savedAt string
	)
	dest := []any{
		&info.ObjectID, &info.Name, &info.Type, &info.Version, &info.Size,
		&savedAt, &info.WorkspaceID, &info.WorkspaceName,
	}
	if data != nil {
		dest = append(dest, data)
	}
	if err := scan(dest...); err != nil {
		return types.ObjectInfo{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return types.ObjectInfo{}, fmt.Errorf("parsing save date %q: %w", savedAt, err)
	}
	info.SaveDate = t
	return info, nil
}
