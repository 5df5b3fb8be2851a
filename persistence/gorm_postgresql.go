// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/coupleboard/models"
)

// GormPostgreSQL is the GORM-backed archive implementation.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (g *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players := make(map[string]interface{}, len(record.Players))
	for _, p := range record.Players {
		players[p.SlotID] = map[string]interface{}{
			"name":     p.Name,
			"position": p.Position,
		}
	}

	row := models.GormGameRecord{
		RoomID:    record.RoomID,
		BoardSize: record.BoardSize,
		Players:   players,
		WinnerID:  record.WinnerID,
		Reason:    record.Reason,
		TurnCount: record.TurnCount,
		Duration:  record.Duration,
	}
	return g.db.Create(&row).Error
}

func (g *GormPostgreSQL) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := g.db.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.GameRecord{
			RoomID:    row.RoomID,
			BoardSize: row.BoardSize,
			WinnerID:  row.WinnerID,
			Reason:    row.Reason,
			TurnCount: row.TurnCount,
			Duration:  row.Duration,
			CreatedAt: row.CreatedAt,
		}
		for slot, v := range row.Players {
			info := models.PlayerInfo{SlotID: slot}
			if raw, err := json.Marshal(v); err == nil {
				var decoded struct {
					Name     string `json:"name"`
					Position int    `json:"position"`
				}
				if json.Unmarshal(raw, &decoded) == nil {
					info.Name = decoded.Name
					info.Position = decoded.Position
				}
			}
			rec.Players = append(rec.Players, info)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
