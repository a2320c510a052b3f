package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"media-manager/internal/database"
	"media-manager/internal/logging"
	"media-manager/internal/startup"
)

// OperationForKey maps an automation task key such as
// "generate_media_list" to its operation name.
func OperationForKey(key string) (string, error) {
	name := strings.ReplaceAll(key, "_", "-")
	if !Known(name) {
		return "", fmt.Errorf("%w: automation task %q", ErrUnknownOperation, key)
	}
	return name, nil
}

// NextRun returns the first time strictly after after that falls on
// hour:minute. Weekly schedules run on Sundays.
func NextRun(after time.Time, hour, minute int, weekly bool) time.Time {
	y, m, d := after.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, after.Location())
	if !next.After(after) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, after.Location())
	}
	if weekly {
		for next.Weekday() != time.Sunday {
			y, m, d = next.Date()
			next = time.Date(y, m, d+1, hour, minute, 0, 0, after.Location())
		}
	}
	return next
}

// ScheduledTask is one enabled automation entry.
type ScheduledTask struct {
	Operation string `json:"operation"`
	Frequency string `json:"frequency"`
	Time      string `json:"time"`

	hour   int
	minute int
}

// Next returns the first run of t after after.
func (t ScheduledTask) Next(after time.Time) time.Time {
	return NextRun(after, t.hour, t.minute, t.Frequency == startup.FrequencyWeekly)
}

// Scheduler runs operations at their configured times.
type Scheduler struct {
	runner *Runner
	tasks  []ScheduledTask
	now    func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler builds a scheduler for the enabled tasks of a. A disabled
// automation block yields a scheduler with no tasks.
func NewScheduler(runner *Runner, a startup.Automation) (*Scheduler, error) {
	s := &Scheduler{
		runner:   runner,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if !a.Enabled {
		return s, nil
	}

	keys := make([]string, 0, len(a.Tasks))
	for key := range a.Tasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		cfg := a.Tasks[key]
		if !cfg.Enabled {
			continue
		}
		name, err := OperationForKey(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hour, minute, err := cfg.Clock()
		if err != nil {
			errs = append(errs, fmt.Errorf("automation task %s: %w", key, err))
			continue
		}
		s.tasks = append(s.tasks, ScheduledTask{
			Operation: name,
			Frequency: cfg.Frequency,
			Time:      cfg.Time,
			hour:      hour,
			minute:    minute,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// Tasks returns the scheduled tasks.
func (s *Scheduler) Tasks() []ScheduledTask {
	return append([]ScheduledTask(nil), s.tasks...)
}

// Start launches one goroutine per scheduled task.
func (s *Scheduler) Start() {
	for _, task := range s.tasks {
		logging.Info("Scheduled %s %s at %s (next: %s)",
			task.Operation, task.Frequency, task.Time, task.Next(s.now()).Format(time.RFC1123))
		s.wg.Add(1)
		go s.loop(task)
	}
}

// Stop stops the scheduler and waits for in-flight triggers to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Scheduler) loop(task ScheduledTask) {
	defer s.wg.Done()

	for {
		wait := task.Next(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			s.trigger(task)
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) trigger(task ScheduledTask) {
	logging.Info("Scheduled run of %s triggered", task.Operation)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err := s.runner.Run(ctx, task.Operation, database.TriggerScheduled)
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		logging.Warn("Skipping scheduled %s: already running", task.Operation)
	case errors.Is(err, context.Canceled):
		logging.Debug("Scheduled %s abandoned during shutdown", task.Operation)
	case err != nil:
		logging.Error("Scheduled %s failed: %v", task.Operation, err)
	}
}
