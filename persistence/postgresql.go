// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/wfunc/coupleboard/models"
)

// PostgreSQL is the plain database/sql archive implementation, for
// deployments that prefer raw SQL over the ORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            board_size INT NOT NULL,
            players JSONB NOT NULL,
            winner_id TEXT NOT NULL,
            reason TEXT NOT NULL,
            turn_count INT NOT NULL DEFAULT 0,
            duration INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_game_records_room_id ON game_records (room_id)`)
	return err
}

func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO game_records (room_id, board_size, players, winner_id, reason, turn_count, duration)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.RoomID, record.BoardSize, players, record.WinnerID,
		record.Reason, record.TurnCount, record.Duration)
	return err
}

func (p *PostgreSQL) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	rows, err := p.db.Query(`
        SELECT room_id, board_size, players, winner_id, reason, turn_count, duration, created_at
        FROM game_records
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		var players []byte
		if err := rows.Scan(&rec.RoomID, &rec.BoardSize, &players, &rec.WinnerID,
			&rec.Reason, &rec.TurnCount, &rec.Duration, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
