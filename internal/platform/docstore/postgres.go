package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"safecommute/internal/common"
	"safecommute/internal/common/token"
	"safecommute/internal/platform/config"
)

// ConnectPostgres opens the document database and creates the documents table
// when missing.
func ConnectPostgres() *sql.DB {
	db, err := sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		doc  JSONB NOT NULL
	)`); err != nil {
		log.Fatalf("Error ensuring documents table: %v", err)
	}

	fmt.Println("Successfully connected to PostgreSQL database!")
	return db
}

// PostgresStore keeps one row per document in a path-keyed JSONB table.
// Collection paths here are single-segment ("users", "incidents"), matching
// every path the services use.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM documents WHERE path = $1`, path).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, common.Errorf("PostgresStore.Get %s: %w", path, err)
	}
	return doc, nil
}

func (s *PostgresStore) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return common.Errorf("PostgresStore.Set %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO documents (path, doc) VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc`, path, raw)
	if err != nil {
		return common.Errorf("PostgresStore.Set %s: %w", path, err)
	}
	return nil
}

// Update merges in Go rather than with a JSONB || expression so all backends
// share the same read-modify-write (last-write-wins) semantics.
func (s *PostgresStore) Update(ctx context.Context, path string, fields map[string]any) error {
	existing, err := s.Get(ctx, path)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		return common.Errorf("PostgresStore.Update %s: %w", path, err)
	}
	merged, err := mergeDocument(existing, fields)
	if err != nil {
		return common.Errorf("PostgresStore.Update %s: %w", path, err)
	}
	return s.Set(ctx, path, json.RawMessage(merged))
}

func (s *PostgresStore) Push(ctx context.Context, path string, value any) (string, error) {
	child := token.New()
	if err := s.Set(ctx, path+"/"+child, value); err != nil {
		return "", err
	}
	return child, nil
}

func (s *PostgresStore) List(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, doc FROM documents WHERE split_part(path, '/', 1) = $1 AND strpos(path, '/') > 0`, path)
	if err != nil {
		return nil, common.Errorf("PostgresStore.List %s: %w", path, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var docPath string
		var doc []byte
		if err := rows.Scan(&docPath, &doc); err != nil {
			return nil, common.Errorf("PostgresStore.List %s: %w", path, err)
		}
		out[strings.TrimPrefix(docPath, path+"/")] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, common.Errorf("PostgresStore.List %s: %w", path, err)
	}
	return out, nil
}
