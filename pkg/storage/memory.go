package storage

import (
	"context"
	"sync"
	"time"
)

// Memory is a Journal kept in process, used when no database is configured.
type Memory struct {
	m      sync.Mutex
	lastID int64
	events []OrderEvent
}

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) AddOrderEvent(_ context.Context, event OrderEvent) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.lastID++
	event.ID = s.lastID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, event)

	return nil
}

func (s *Memory) OrderEvents(_ context.Context, marketID string) ([]OrderEvent, error) {
	s.m.Lock()
	defer s.m.Unlock()

	var events []OrderEvent
	for _, e := range s.events {
		if e.MarketID == marketID {
			events = append(events, e)
		}
	}

	return events, nil
}
