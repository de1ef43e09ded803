package services

import (
	"context"
	"log"
	"time"
)

// OverdueService runs the background sweep that flips pending
// installments past their due date to overdue
type OverdueService struct {
	finance  *FinanceService
	interval time.Duration
	stopChan chan struct{}
}

// NewOverdueService creates a new overdue sweeper
func NewOverdueService(finance *FinanceService) *OverdueService {
	return &OverdueService{
		finance:  finance,
		interval: 1 * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately so a
// restart never leaves stale statuses for an hour.
func (s *OverdueService) Start() {
	log.Println("Overdue sweeper started")
	go s.run()
}

// Stop gracefully stops the sweep loop
func (s *OverdueService) Stop() {
	close(s.stopChan)
	log.Println("Overdue sweeper stopped")
}

func (s *OverdueService) run() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

func (s *OverdueService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.finance.MarkOverdue(ctx)
	if err != nil {
		log.Printf("Overdue sweep error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Overdue sweep: %d installments flagged", n)
	}
}
