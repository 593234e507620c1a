// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wfunc/mahjongtable/models"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

const queryTimeout = 5 * time.Second

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS view_sessions (
            id SERIAL PRIMARY KEY,
            session_id VARCHAR(64) UNIQUE NOT NULL,
            username VARCHAR(255) NOT NULL DEFAULT '',
            started_at TIMESTAMP NOT NULL,
            initialized_at TIMESTAMP NULL,
            wall_tiles INT NOT NULL DEFAULT 0,
            hand_tiles INT NOT NULL DEFAULT 0,
            events_received BIGINT NOT NULL DEFAULT 0,
            last_event VARCHAR(64) NOT NULL DEFAULT '',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_view_sessions_started_at ON view_sessions(started_at);
    `)
	return err
}

// SaveSession 使用 UPSERT 写入会话记录
func (p *PostgreSQL) SaveSession(record *models.SessionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
        INSERT INTO view_sessions
            (session_id, username, started_at, initialized_at, wall_tiles, hand_tiles, events_received, last_event)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (session_id)
        DO UPDATE SET initialized_at = $4, wall_tiles = $5, hand_tiles = $6,
            events_received = $7, last_event = $8, updated_at = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query,
		record.SessionID, record.Username, record.StartedAt, record.InitializedAt,
		record.WallTiles, record.HandTiles, record.EventsReceived, record.LastEvent)
	return err
}

const selectSession = `
    SELECT session_id, username, started_at, initialized_at, wall_tiles, hand_tiles,
        events_received, last_event, updated_at
    FROM view_sessions`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*models.SessionRecord, error) {
	var (
		record      models.SessionRecord
		initialized sql.NullTime
	)
	err := row.Scan(&record.SessionID, &record.Username, &record.StartedAt, &initialized,
		&record.WallTiles, &record.HandTiles, &record.EventsReceived, &record.LastEvent, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if initialized.Valid {
		record.InitializedAt = &initialized.Time
	}
	return &record, nil
}

func (p *PostgreSQL) LoadSession(sessionID string) (*models.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	record, err := scanSession(p.db.QueryRowContext(ctx, selectSession+` WHERE session_id = $1`, sessionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

func (p *PostgreSQL) RecentSessions(limit int) ([]models.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, selectSession+` ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
