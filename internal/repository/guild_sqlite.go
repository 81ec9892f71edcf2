package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"guild-economy-api/pkg/logger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

var sqliteDialect = dialect{
	name: "sqlite",
	createTable: `
	CREATE TABLE IF NOT EXISTS economy_guilds (
		guild_key TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	insertEmpty: `INSERT OR IGNORE INTO economy_guilds (guild_key, document, updated_at) VALUES (?, ?, ?)`,
	selectDoc:   `SELECT document FROM economy_guilds WHERE guild_key = ?`,
	selectLock:  `SELECT document FROM economy_guilds WHERE guild_key = ?`,
	updateDoc:   `UPDATE economy_guilds SET document = ?, updated_at = ? WHERE guild_key = ?`,
	upsertDoc: `
		INSERT INTO economy_guilds (guild_key, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(guild_key) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
	listKeys:  `SELECT guild_key FROM economy_guilds WHERE guild_key LIKE ? ORDER BY guild_key`,
	countRows: `SELECT COUNT(*) FROM economy_guilds`,
}

// SQLiteGuildRepository implements GuildRepository using SQLite in WAL mode.
// SQLite has no row locks, so writers are serialized in process.
type SQLiteGuildRepository struct {
	*sqlGuildStore
}

// NewSQLiteGuildRepository opens (or creates) the database file at dbPath.
func NewSQLiteGuildRepository(dbPath, namespace string, log logrus.FieldLogger) (*SQLiteGuildRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store, err := newSQLGuildStore(context.Background(), db, sqliteDialect, namespace, &sync.Mutex{})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Component(log, "SQLiteGuildRepository").Infof("Initialized with database: %s", dbPath)
	return &SQLiteGuildRepository{sqlGuildStore: store}, nil
}

// GetStats adds the database file size to the common stats.
func (r *SQLiteGuildRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := r.sqlGuildStore.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize
	return stats, nil
}

// Ensure SQLiteGuildRepository implements GuildRepository
var _ GuildRepository = (*SQLiteGuildRepository)(nil)
