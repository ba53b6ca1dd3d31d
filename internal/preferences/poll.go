package preferences

import (
	"context"
	"time"
)

type pollTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// SetPollInterval replaces the poll loop. The previous loop has exited when
// this returns; syncs it already started keep running. A non-positive d
// leaves polling stopped.
func (c *Controller) SetPollInterval(d time.Duration) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	c.stopPollLocked()
	c.pollInterval = d
	if d <= 0 || c.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	task := &pollTask{cancel: cancel, done: make(chan struct{})}
	c.poll = task
	c.activePolls.Add(1)
	go c.runPoll(ctx, d, task.done)
	c.log.WithField("interval", d).Debug("poll loop started")
}

// PollInterval returns the interval of the running loop, or zero when
// polling is stopped.
func (c *Controller) PollInterval() time.Duration {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.poll == nil {
		return 0
	}
	return c.pollInterval
}

// ActivePolls reports how many poll loops are running.
func (c *Controller) ActivePolls() int {
	return int(c.activePolls.Load())
}

// Close stops polling, waits for in-flight syncs and stops pending
// notification clears.
func (c *Controller) Close() {
	c.pollMu.Lock()
	c.stopPollLocked()
	c.cancel()
	c.pollMu.Unlock()

	c.inflight.Wait()
	c.notifier.Close()
}

func (c *Controller) stopPollLocked() {
	if c.poll == nil {
		return
	}
	c.poll.cancel()
	<-c.poll.done
	c.poll = nil
}

func (c *Controller) runPoll(ctx context.Context, d time.Duration, done chan struct{}) {
	defer close(done)
	defer c.activePolls.Add(-1)

	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick starts a sync on the controller's root context so that replacing the
// loop does not abort it.
func (c *Controller) tick() {
	if !c.HasToken() {
		return
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.sync(c.ctx, "poll", nil, nil)
	}()
}
