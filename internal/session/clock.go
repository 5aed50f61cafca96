package session

import (
	"fmt"
	"time"

	"memory-duel/internal/ws"
)

// ClockInterval is how often the elapsed time is pushed to the client
const ClockInterval = 1 * time.Second

// FormatElapsed renders d as mm:ss
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Elapsed returns the play time of the current game
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	if s.running {
		return s.elapsed + time.Since(s.startedAt)
	}
	return s.elapsed
}

func (s *Session) startClockLocked(from time.Duration) {
	s.stopClockLocked()

	s.elapsed = from
	s.startedAt = time.Now()
	s.running = true
	s.clockDone = make(chan struct{})

	done := s.clockDone
	ticker := time.NewTicker(ClockInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.notify(ws.MsgTimer, ws.TimerPayload{Elapsed: FormatElapsed(s.Elapsed())})
			}
		}
	}()
}

func (s *Session) stopClockLocked() {
	if s.running {
		s.elapsed += time.Since(s.startedAt)
		s.running = false
	}
	if s.clockDone != nil {
		close(s.clockDone)
		s.clockDone = nil
	}
}
