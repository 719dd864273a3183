package sim

import (
	"context"
	"time"
)

// Start launches the three periodic loops: physics integration, control
// sampling, and input polling for long-press detection. The loops stop when
// ctx is cancelled or Close is called.
func (s *Simulator) Start(ctx context.Context) {
	s.startPhysicsLoop(ctx)
	s.startControlLoop(ctx)
	s.startPollLoop(ctx)
}

// Close stops the loops and waits for them to drain.
func (s *Simulator) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Simulator) startPhysicsLoop(ctx context.Context) {
	t := time.NewTicker(s.opt.PhysicsInterval)
	s.log.Info("physics loop started", "step", s.opt.PhysicsInterval.String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer t.Stop()
		last := time.Now()
		for {
			select {
			case now := <-t.C:
				s.StepPhysics(now.Sub(last))
				last = now
			case <-ctx.Done():
				s.log.Info("physics loop stopped")
				return
			case <-s.stopCh:
				return
			}
		}
	}()
}

func (s *Simulator) startControlLoop(ctx context.Context) {
	t := time.NewTicker(s.opt.ControlInterval)
	s.log.Info("control loop started", "period", s.opt.ControlInterval.String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.StepControl()
			case <-ctx.Done():
				s.log.Info("control loop stopped")
				return
			case <-s.stopCh:
				return
			}
		}
	}()
}

func (s *Simulator) startPollLoop(ctx context.Context) {
	t := time.NewTicker(s.opt.PollInterval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer t.Stop()
		for {
			select {
			case now := <-t.C:
				s.Poll(now)
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			}
		}
	}()
}
