// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/coupleboard/models"
)

// Database is the finished-game archive. It is append-mostly: the engine
// writes one record per finished game and the admin dashboard reads the
// recent ones. Live room state never goes through here.
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	RecentGameRecords(limit int) ([]models.GameRecord, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
