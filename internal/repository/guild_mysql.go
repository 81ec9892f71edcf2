package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var mysqlDialect = dialect{
	name: "mysql",
	createTable: `
	CREATE TABLE IF NOT EXISTS economy_guilds (
		guild_key VARCHAR(191) NOT NULL PRIMARY KEY,
		document LONGTEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	insertEmpty: `INSERT IGNORE INTO economy_guilds (guild_key, document, updated_at) VALUES (?, ?, ?)`,
	selectDoc:   `SELECT document FROM economy_guilds WHERE guild_key = ?`,
	selectLock:  `SELECT document FROM economy_guilds WHERE guild_key = ? FOR UPDATE`,
	updateDoc:   `UPDATE economy_guilds SET document = ?, updated_at = ? WHERE guild_key = ?`,
	upsertDoc: `INSERT INTO economy_guilds (guild_key, document, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE document = VALUES(document), updated_at = VALUES(updated_at)`,
	listKeys:  `SELECT guild_key FROM economy_guilds WHERE guild_key LIKE ? ORDER BY guild_key`,
	countRows: `SELECT COUNT(*) FROM economy_guilds`,
}

// MySQLGuildRepository implements GuildRepository using MySQL (InnoDB row locks).
type MySQLGuildRepository struct {
	*sqlGuildStore
}

// NewMySQLGuildRepository connects to MySQL and creates the guild table.
func NewMySQLGuildRepository(dsn, namespace string) (*MySQLGuildRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	repo, err := NewMySQLGuildRepositoryFromDB(ctx, db, namespace)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewMySQLGuildRepositoryFromDB wraps an open connection pool.
func NewMySQLGuildRepositoryFromDB(ctx context.Context, db *sql.DB, namespace string) (*MySQLGuildRepository, error) {
	store, err := newSQLGuildStore(ctx, db, mysqlDialect, namespace, nil)
	if err != nil {
		return nil, err
	}
	return &MySQLGuildRepository{sqlGuildStore: store}, nil
}

// Ensure MySQLGuildRepository implements GuildRepository
var _ GuildRepository = (*MySQLGuildRepository)(nil)
