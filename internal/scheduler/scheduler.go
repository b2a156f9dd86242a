package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps cron-based background jobs.
type Scheduler struct {
	cron *cron.Cron
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// EverySpec converts an interval into a cron "@every" spec, rounded down to
// whole seconds with a floor of one second.
func EverySpec(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive")
	}
	seconds := int(interval / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds), nil
}

// ScheduleInterval registers a periodic job every given duration.
func (s *Scheduler) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	spec, err := EverySpec(interval)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Heartbeat returns a job that pings p and logs failures and recoveries.
// The job must not run concurrently with itself.
func Heartbeat(p Pinger, timeout time.Duration) func() {
	healthy := true
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := p.Ping(ctx)
		switch {
		case err != nil && healthy:
			log.Printf("[WARN] store unreachable: %v", err)
		case err != nil:
			log.Printf("[WARN] store still unreachable: %v", err)
		case !healthy:
			log.Println("store reachable again")
		}
		healthy = err == nil
	}
}
