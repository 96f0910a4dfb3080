// Why this file: ./storage/sqlite.go
// SQLiteDB persists query/response history and can store and load
// semantic-cache entries for L2 (SaveCacheEntry/LoadCacheEntries);
// cmd/hybridrag uses only the query log. Adapted
// from the teacher's storage/sqlite.go: same connection-pool/WAL setup,
// schema-in-one-Exec idiom, and INSERT OR REPLACE pattern, rebuilt against
// query_log/cache_entries instead of the teacher's files/functions/types
// code-index schema.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// SQLiteDB is a connection to the fabric's persistence database.
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// QueryLogEntry is one persisted query/response pair.
type QueryLogEntry struct {
	QueryID       string    `json:"query_id"`
	QueryText     string    `json:"query_text"`
	Answer        string    `json:"answer"`
	StrategyUsed  string    `json:"strategy_used"`
	Confidence    float64   `json:"confidence"`
	TokensUsed    int       `json:"tokens_used"`
	CostUSD       float64   `json:"cost_usd"`
	LatencyMS     int64     `json:"latency_ms"`
	Cached        bool      `json:"cached"`
	FallbackUsed  bool      `json:"fallback_used"`
	ErrorCode     string    `json:"error_code"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSQLiteDB opens (creating if necessary) the fabric's SQLite database.
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	sqliteDB := &SQLiteDB{db: db, path: dbPath}

	if err := sqliteDB.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return sqliteDB, nil
}

func (db *SQLiteDB) initSchema() error {
	schema := `
    -- Query/response history, the source of truth for anything the
    -- in-memory cache tiers lose on restart.
    CREATE TABLE IF NOT EXISTS query_log (
        query_id TEXT PRIMARY KEY,
        query_text TEXT NOT NULL,
        answer TEXT NOT NULL,
        strategy_used TEXT NOT NULL,
        confidence REAL NOT NULL,
        tokens_used INTEGER NOT NULL,
        cost_usd REAL NOT NULL,
        latency_ms INTEGER NOT NULL,
        cached BOOLEAN NOT NULL,
        fallback_used BOOLEAN NOT NULL,
        error_code TEXT DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    -- Semantic cache rehydration: the query's embedding alongside its
    -- answer, so a restarted process can repopulate L2 without replaying
    -- every query against the embedder.
    CREATE TABLE IF NOT EXISTS cache_entries (
        query_text TEXT PRIMARY KEY,
        embedding TEXT NOT NULL, -- JSON array of float32
        answer TEXT NOT NULL,
        strategy_used TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_query_log_strategy ON query_log(strategy_used);
    CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at);
    `

	_, err := db.db.Exec(schema)
	return err
}

// LogQuery persists a sealed QueryResult for later analysis or replay.
func (db *SQLiteDB) LogQuery(text string, result *models.QueryResult) error {
	errCode := ""
	if result.Error != nil {
		errCode = string(*result.Error)
	}

	_, err := db.db.Exec(`
        INSERT OR REPLACE INTO query_log
        (query_id, query_text, answer, strategy_used, confidence, tokens_used,
         cost_usd, latency_ms, cached, fallback_used, error_code)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.QueryID, text, result.Answer, string(result.StrategyUsed),
		result.ConfidenceScore, result.TokensUsed, result.CostUSD, result.LatencyMS,
		result.Cached, result.FallbackUsed, errCode)
	if err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	return nil
}

// GetQueryHistory returns the most recent limit query log entries, newest
// first.
func (db *SQLiteDB) GetQueryHistory(limit int) ([]*QueryLogEntry, error) {
	rows, err := db.db.Query(`
        SELECT query_id, query_text, answer, strategy_used, confidence,
               tokens_used, cost_usd, latency_ms, cached, fallback_used,
               error_code, created_at
        FROM query_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get query history: %w", err)
	}
	defer rows.Close()

	var entries []*QueryLogEntry
	for rows.Next() {
		e := &QueryLogEntry{}
		if err := rows.Scan(&e.QueryID, &e.QueryText, &e.Answer, &e.StrategyUsed,
			&e.Confidence, &e.TokensUsed, &e.CostUSD, &e.LatencyMS, &e.Cached,
			&e.FallbackUsed, &e.ErrorCode, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveCacheEntry persists a semantic-cache entry so it can be rehydrated
// into L2 on the next process start.
func (db *SQLiteDB) SaveCacheEntry(queryText string, embedding models.Vector, answer string, strategy models.Strategy) error {
	raw, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = db.db.Exec(`
        INSERT OR REPLACE INTO cache_entries (query_text, embedding, answer, strategy_used)
        VALUES (?, ?, ?, ?)`, queryText, string(raw), answer, string(strategy))
	if err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

// LoadCacheEntries returns every persisted cache entry, for rehydrating
// L2 at startup when no external cache store is configured.
func (db *SQLiteDB) LoadCacheEntries() ([]CacheEntryRow, error) {
	rows, err := db.db.Query(`SELECT query_text, embedding, answer, strategy_used FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("load cache entries: %w", err)
	}
	defer rows.Close()

	var out []CacheEntryRow
	for rows.Next() {
		var r CacheEntryRow
		var raw string
		if err := rows.Scan(&r.QueryText, &raw, &r.Answer, &r.StrategyUsed); err != nil {
			return nil, fmt.Errorf("scan cache entry row: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &r.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CacheEntryRow is one rehydrated semantic-cache entry.
type CacheEntryRow struct {
	QueryText    string
	Embedding    models.Vector
	Answer       string
	StrategyUsed string
}

// Stats summarises persisted query volume and cost.
type Stats struct {
	TotalQueries int     `json:"total_queries"`
	CacheHits    int     `json:"cache_hits"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// GetStats returns a snapshot of the query log.
func (db *SQLiteDB) GetStats() (*Stats, error) {
	stats := &Stats{}
	row := db.db.QueryRow(`
        SELECT COUNT(*), COALESCE(SUM(cached), 0), COALESCE(SUM(cost_usd), 0)
        FROM query_log`)
	if err := row.Scan(&stats.TotalQueries, &stats.CacheHits, &stats.TotalCostUSD); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// DeleteOlderThan removes query log entries older than the given age.
func (db *SQLiteDB) DeleteOlderThan(age time.Duration) error {
	cutoff := time.Now().Add(-age)
	_, err := db.db.Exec(`DELETE FROM query_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("delete old query log entries: %w", err)
	}
	return nil
}

// Vacuum reclaims unused space after bulk deletes.
func (db *SQLiteDB) Vacuum() error {
	_, err := db.db.Exec("VACUUM")
	return err
}

// Close closes the underlying database connection.
func (db *SQLiteDB) Close() error {
	return db.db.Close()
}
