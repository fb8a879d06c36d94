// Package jobs drives periodic settlement passes.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cryptoboost/internal/usecase/settlement"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// PassRunner is anything that can run one settlement pass.
type PassRunner interface {
	RunPass(ctx context.Context, now time.Time) (settlement.Report, error)
}

type Scheduler struct {
	cron       *cron.Cron
	job        cron.Job
	spec       string
	runOnStart bool
	runner     PassRunner
	now        func() time.Time

	ctx context.Context
	wg  sync.WaitGroup
}

// NewScheduler validates spec ("@every 5m", "*/10 * * * *", ...) and wires the
// pass. Overlapping ticks are skipped while a pass is still running.
func NewScheduler(runner PassRunner, spec string, runOnStart bool) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.StandardLogger())
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC), cron.WithLogger(logger)),
		spec:       spec,
		runOnStart: runOnStart,
		runner:     runner,
		now:        func() time.Time { return time.Now().UTC() },
		ctx:        context.Background(),
	}
	s.job = cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.runPass))

	if _, err := s.cron.AddJob(spec, s.job); err != nil {
		return nil, fmt.Errorf("settlement schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runPass() {
	log.Debug("[CRON] settlement pass")
	if _, err := s.runner.RunPass(s.ctx, s.now()); err != nil {
		log.WithError(err).Error("[CRON] settlement pass failed")
	}
}

// Start begins ticking; ctx is handed to every pass.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.job.Run()
		}()
	}
	s.cron.Start()
	log.WithField("schedule", s.spec).Info("settlement scheduler started")
}

// Stop halts ticking and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	log.Info("settlement scheduler stopped")
}
