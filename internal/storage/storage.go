package storage

import (
	"sync"
	"time"

	"github.com/paperlens/paperlens/internal/models"
)

// Record is one completed analysis kept for later retrieval.
type Record struct {
	Session   int64                 `json:"session"`
	Source    string                `json:"source"` // "text" or "pdf"
	Pages     int                   `json:"pages,omitempty"`
	Analysis  *models.PaperAnalysis `json:"analysis"`
	CreatedAt time.Time             `json:"created_at"`
}

// Archive holds completed analyses keyed by session id.
type Archive struct {
	records map[int64]*Record
	mu      sync.RWMutex
}

func New() *Archive {
	return &Archive{
		records: make(map[int64]*Record),
	}
}

func (a *Archive) Get(session int64) (*Record, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	record, exists := a.records[session]
	return record, exists
}

func (a *Archive) Set(session int64, record *Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[session] = record
}

func (a *Archive) GetAll() []*Record {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*Record, 0, len(a.records))
	for _, r := range a.records {
		result = append(result, r)
	}
	return result
}

func (a *Archive) Delete(session int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.records, session)
}
