package logger

import (
	"sync"
	"time"
)

// ProgressTracker logs periodic progress for long row-processing loops
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mutex       sync.Mutex
}

// ProgressConfig configures progress tracking behavior
type ProgressConfig struct {
	Operation   string        `json:"operation"`
	Total       int64         `json:"total"`
	LogInterval time.Duration `json:"log_interval"`
	Logger      Logger        `json:"-"`
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(config ProgressConfig) *ProgressTracker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	if config.LogInterval == 0 {
		config.LogInterval = 5 * time.Second
	}

	tracker := &ProgressTracker{
		logger:      config.Logger.WithComponent("progress"),
		operation:   config.Operation,
		total:       config.Total,
		startTime:   time.Now(),
		lastLogTime: time.Now(),
		logInterval: config.LogInterval,
	}

	tracker.logger.WithFields(Fields{
		"operation": config.Operation,
		"total":     config.Total,
	}).Info("Starting operation")

	return tracker
}

// Update sets the progress counter
func (p *ProgressTracker) Update(current int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current = current
	p.maybeLog(time.Now())
}

// Increment increments the progress counter by 1
func (p *ProgressTracker) Increment() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current++
	p.maybeLog(time.Now())
}

// Complete logs the final progress summary
func (p *ProgressTracker) Complete() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	elapsed := time.Since(p.startTime)
	fields := Fields{
		"operation": p.operation,
		"processed": p.current,
		"elapsed":   elapsed.Round(time.Millisecond).String(),
	}
	if elapsed > 0 {
		fields["rows_per_second"] = float64(p.current) / elapsed.Seconds()
	}

	p.logger.WithFields(fields).Info("Operation completed")
}

func (p *ProgressTracker) maybeLog(now time.Time) {
	if now.Sub(p.lastLogTime) < p.logInterval {
		return
	}
	p.lastLogTime = now

	fields := Fields{
		"operation": p.operation,
		"processed": p.current,
	}
	if p.total > 0 {
		fields["total"] = p.total
		fields["percent"] = float64(p.current) / float64(p.total) * 100.0
	}
	elapsed := now.Sub(p.startTime)
	if elapsed > 0 && p.current > 0 && p.total > 0 {
		remaining := time.Duration(float64(elapsed) / float64(p.current) * float64(p.total-p.current))
		fields["estimated_remaining"] = remaining.Round(time.Second).String()
	}

	p.logger.WithFields(fields).Info("Operation in progress")
}
