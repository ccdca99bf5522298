package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pagewatch-dev/pagewatch/db"
	"github.com/pagewatch-dev/pagewatch/internal/checker"
	"github.com/pagewatch-dev/pagewatch/internal/models"
)

type Scheduler struct {
	checker  *checker.Checker
	monitors map[uint]*MonitorJob // monitor ID -> job
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

type MonitorJob struct {
	monitor models.Monitor
	ticker  *time.Ticker
	cancel  context.CancelFunc
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler(chk *checker.Checker) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		checker:  chk,
		monitors: make(map[uint]*MonitorJob),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start loads all active monitors and begins scheduling
func (s *Scheduler) Start() error {
	log.Println("Starting scheduler...")

	var monitorsList []models.Monitor
	if err := db.DB.Where("is_active = ?", true).Find(&monitorsList).Error; err != nil {
		return err
	}

	for _, monitor := range monitorsList {
		s.AddMonitor(monitor)
	}

	log.Printf("Scheduler started with %d monitors", len(monitorsList))
	return nil
}

// Stop gracefully shuts down all monitor jobs
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cancel() // Cancel main context

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.monitors {
		job.ticker.Stop()
		job.cancel()
	}

	s.monitors = make(map[uint]*MonitorJob)
	log.Println("Scheduler stopped")
}

// AddMonitor starts scheduling checks for a specific monitor
func (s *Scheduler) AddMonitor(monitor models.Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop existing job if it exists
	if existingJob, exists := s.monitors[monitor.ID]; exists {
		existingJob.ticker.Stop()
		existingJob.cancel()
	}

	// Create new job
	jobCtx, jobCancel := context.WithCancel(s.ctx)
	ticker := time.NewTicker(time.Duration(monitor.Interval) * time.Second)

	job := &MonitorJob{
		monitor: monitor,
		ticker:  ticker,
		cancel:  jobCancel,
	}

	s.monitors[monitor.ID] = job

	// Start the monitoring goroutine with immediate check
	go func() {
		monitorCopy := monitor
		s.executeCheck(jobCtx, monitorCopy)
		s.runMonitor(jobCtx, job)
	}()

	log.Printf("Added monitor %d (%s) with immediate check", monitor.ID, monitor.Name)
}

// RemoveMonitor stops scheduling checks for a specific monitor
func (s *Scheduler) RemoveMonitor(monitorID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, exists := s.monitors[monitorID]; exists {
		job.ticker.Stop()
		job.cancel()
		delete(s.monitors, monitorID)
		log.Printf("Removed monitor %d", monitorID)
	}
}

// UpdateMonitor updates an existing monitor (stops old, starts new)
func (s *Scheduler) UpdateMonitor(monitor models.Monitor) {
	s.AddMonitor(monitor) // AddMonitor handles stopping existing job
}

// runMonitor drives the per-monitor ticker loop
func (s *Scheduler) runMonitor(ctx context.Context, job *MonitorJob) {
	defer job.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-job.ticker.C:
			s.mu.RLock()
			monitorCopy := job.monitor
			s.mu.RUnlock()

			s.executeCheck(ctx, monitorCopy)
		}
	}
}

// executeCheck runs one check through the orchestrator
func (s *Scheduler) executeCheck(ctx context.Context, monitor models.Monitor) {
	outcome, err := s.checker.RunCheck(ctx, monitor.ID, monitor.UserID)

	if err != nil {
		log.Printf("Monitor %d check failed: %v", monitor.ID, err)
		return
	}

	log.Printf("Monitor %d checked: %s in %dms (notified=%t)",
		monitor.ID, outcome.Status, outcome.ResponseTime, outcome.Notified)
}

// GetStatus returns current scheduler status
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"active_monitors": len(s.monitors),
		"running":         s.ctx.Err() == nil,
	}
}

// Global scheduler instance
var globalScheduler *Scheduler

// Initialize creates and starts the global scheduler
func Initialize(chk *checker.Checker) error {
	globalScheduler = NewScheduler(chk)
	return globalScheduler.Start()
}

// Shutdown stops the global scheduler
func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}

// AddMonitor adds a monitor to the global scheduler
func AddMonitor(monitor models.Monitor) {
	if globalScheduler != nil {
		globalScheduler.AddMonitor(monitor)
	}
}

// RemoveMonitor removes a monitor from the global scheduler
func RemoveMonitor(monitorID uint) {
	if globalScheduler != nil {
		globalScheduler.RemoveMonitor(monitorID)
	}
}

// UpdateMonitor updates a monitor in the global scheduler
func UpdateMonitor(monitor models.Monitor) {
	if globalScheduler != nil {
		globalScheduler.UpdateMonitor(monitor)
	}
}
