package withdrawal

import (
	"fmt"
	"time"
)

// Phase is the user-facing processing stage of a withdrawal request,
// derived from elapsed wall-clock time. It is never stored.
type Phase string

const (
	PhaseQueued     Phase = "queued"
	PhaseProcessing Phase = "processing"
	PhaseOverdue    Phase = "overdue"
)

// Window bounds the expected processing time of a withdrawal.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// DefaultWindow is the fixed [5m, 20m] processing window.
var DefaultWindow = Window{Min: 5 * time.Minute, Max: 20 * time.Minute}

// Estimate is the derived state returned to the caller.
type Estimate struct {
	Phase     Phase
	Remaining time.Duration
	Label     string
}

// Estimator maps elapsed time since request creation to a phase and label.
// Pure; callers re-evaluate on a timer to refresh the countdown.
type Estimator struct {
	window Window
}

// NewEstimator builds an estimator; a zero window falls back to the default.
func NewEstimator(window Window) *Estimator {
	if window.Min <= 0 || window.Max <= window.Min {
		window = DefaultWindow
	}
	return &Estimator{window: window}
}

// Estimate derives the phase for a request created at createdAt as of now.
func (e *Estimator) Estimate(createdAt, now time.Time) Estimate {
	elapsed := now.Sub(createdAt)

	switch {
	case elapsed < e.window.Min:
		remaining := e.window.Min - elapsed
		return Estimate{
			Phase:     PhaseQueued,
			Remaining: remaining,
			Label:     fmt.Sprintf("queued, processing starts in %s", formatCountdown(remaining)),
		}
	case elapsed <= e.window.Max:
		remaining := e.window.Max - elapsed
		return Estimate{
			Phase:     PhaseProcessing,
			Remaining: remaining,
			Label:     fmt.Sprintf("processing, up to %s remaining", formatCountdown(remaining)),
		}
	default:
		return Estimate{
			Phase: PhaseOverdue,
			Label: "still processing, hang tight",
		}
	}
}

// formatCountdown renders a coarse m:ss countdown.
func formatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d / time.Minute)
	seconds := int(d/time.Second) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
