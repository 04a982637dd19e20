package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler owns the process's recurring jobs as an explicit registry of
// named, cancellable handles. Jobs are registered during startup and torn
// down by StopAll on shutdown; there is no package-level state.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*job
	log  *logrus.Logger
}

type job struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

func New(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		jobs: make(map[string]*job),
		log:  log,
	}
}

// RegisterInterval runs fn every interval, starting one interval from now.
// Registering a name that already exists replaces (and stops) the previous
// job.
func (s *Scheduler) RegisterInterval(name string, interval time.Duration, fn func(ctx context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %v for job %q", interval, name)
	}

	return s.register(name, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

// RegisterDaily runs fn once per day at the given wall-clock hour:minute in
// tz.
func (s *Scheduler) RegisterDaily(name string, hour, minute int, tz *time.Location, fn func(ctx context.Context)) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid wall-clock time %02d:%02d for job %q", hour, minute, name)
	}

	return s.register(name, func(ctx context.Context) {
		for {
			now := time.Now().In(tz)
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, tz)
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				fn(ctx)
			}
		}
	})
}

func (s *Scheduler) register(name string, loop func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		s.log.WithField("job", name).Warn("replacing already registered job")
		old.cancel()
		<-old.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{name: name, cancel: cancel, done: make(chan struct{})}
	s.jobs[name] = j

	go func() {
		defer close(j.done)
		s.log.WithField("job", name).Info("job started")
		loop(ctx)
		s.log.WithField("job", name).Info("job stopped")
	}()

	return nil
}

// Stop cancels one job and waits for its loop to exit. It reports whether
// the job existed.
func (s *Scheduler) Stop(name string) bool {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if ok {
		delete(s.jobs, name)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	j.cancel()
	<-j.done
	return true
}

// StopAll cancels every registered job and waits for them to exit.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
		<-j.done
	}
}
