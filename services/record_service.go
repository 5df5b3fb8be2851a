// services/record_service.go
package services

import (
	"sync"

	"github.com/wfunc/coupleboard/logger"
	"github.com/wfunc/coupleboard/models"
	"github.com/wfunc/coupleboard/persistence"
)

// RecordService archives finished games off the game loop. Saves are
// queued and written by one background worker so a slow database never
// blocks a room operation. With a nil database it degrades to a counter.
type RecordService struct {
	db    persistence.Database
	queue chan *models.GameRecord
	done  chan struct{}
	once  sync.Once

	mutex sync.Mutex
	saved int
}

func NewRecordService(db persistence.Database) *RecordService {
	s := &RecordService{
		db:    db,
		queue: make(chan *models.GameRecord, 64),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// GameFinished implements game.RecordSink.
func (s *RecordService) GameFinished(record *models.GameRecord) {
	select {
	case s.queue <- record:
	default:
		// Archive backlog full; the game outcome already reached the
		// clients, so dropping the record is the right trade.
		logger.Log.Warnw("game record dropped, archive queue full", "room", record.RoomID)
	}
}

// RecentGames returns the newest archived records for the admin dashboard.
func (s *RecordService) RecentGames(limit int) ([]models.GameRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.db.RecentGameRecords(limit)
}

// SavedCount reports how many records were archived since startup.
func (s *RecordService) SavedCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.saved
}

// Close drains the queue and stops the worker.
func (s *RecordService) Close() {
	s.once.Do(func() {
		close(s.queue)
		<-s.done
	})
}

func (s *RecordService) worker() {
	defer close(s.done)
	for record := range s.queue {
		if s.db != nil {
			if err := s.db.SaveGameRecord(record); err != nil {
				logger.Log.Errorw("failed to archive game record", "room", record.RoomID, "err", err)
				continue
			}
		}
		s.mutex.Lock()
		s.saved++
		s.mutex.Unlock()
	}
}
