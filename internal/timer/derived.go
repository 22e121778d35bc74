package timer

import "fmt"

// ElapsedSeconds returns the seconds counted down so far.
func (s Snapshot) ElapsedSeconds() int {
	return s.TotalSeconds - s.RemainingSeconds
}

// ElapsedMinutes returns the elapsed time rounded up to whole minutes.
func (s Snapshot) ElapsedMinutes() int {
	elapsed := s.ElapsedSeconds()
	if elapsed <= 0 {
		return 0
	}
	return (elapsed + 59) / 60
}

// Progress returns the elapsed fraction in [0, 1]. Zero for an empty session.
func (s Snapshot) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	return float64(s.ElapsedSeconds()) / float64(s.TotalSeconds)
}

// EarlyMinutes returns how many estimated minutes were left unused.
func (s Snapshot) EarlyMinutes() float64 {
	early := s.ExpectedMinutes - float64(s.ElapsedMinutes())
	if early < 0 {
		return 0
	}
	return early
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
