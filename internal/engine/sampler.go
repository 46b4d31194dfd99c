package engine

import (
	"time"

	"github.com/hashrush-gg/hashrush-core/internal/log"
)

// StartSampler launches the background sampler: on every tick it takes the
// engine lock, appends a price-history sample, and recomputes the
// leaderboard. One sampler per engine.
func (e *Engine) StartSampler(interval time.Duration, leaderboardSize int) {
	e.mu.Lock()
	if e.samplerStop != nil {
		e.mu.Unlock()
		return
	}
	e.samplerStop = make(chan struct{})
	e.samplerDone = make(chan struct{})
	stop, done := e.samplerStop, e.samplerDone
	e.mu.Unlock()

	go func() {
		defer close(done)
		log.Sampler.Info().Dur("interval", interval).Msg("sampler started")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.sampleTick(leaderboardSize)
			case <-stop:
				log.Sampler.Info().Msg("sampler stopped")
				return
			}
		}
	}()
}

// StopSampler stops the background sampler and waits for it to exit.
func (e *Engine) StopSampler() {
	e.mu.Lock()
	stop, done := e.samplerStop, e.samplerDone
	e.samplerStop = nil
	e.samplerDone = nil
	e.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// sampleTick runs one sampler pass under the engine lock.
func (e *Engine) sampleTick(leaderboardSize int) {
	e.mu.Lock()
	e.samplePriceLocked(e.now())
	e.recomputeLeaderboardLocked(leaderboardSize)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
}
