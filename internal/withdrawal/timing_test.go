package withdrawal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEstimate_Phases(t *testing.T) {
	estimator := NewEstimator(DefaultWindow)
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    Phase
	}{
		{"just created", 0, PhaseQueued},
		{"under min", 4*time.Minute + 59*time.Second, PhaseQueued},
		{"at min", 5 * time.Minute, PhaseProcessing},
		{"mid window", 6 * time.Minute, PhaseProcessing},
		{"at max", 20 * time.Minute, PhaseProcessing},
		{"past max", 21 * time.Minute, PhaseOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := estimator.Estimate(now.Add(-tc.elapsed), now)
			require.Equal(t, tc.want, got.Phase)
		})
	}
}

func TestEstimate_QueuedCountsDownToMin(t *testing.T) {
	estimator := NewEstimator(DefaultWindow)
	now := time.Now()

	got := estimator.Estimate(now.Add(-2*time.Minute), now)
	require.Equal(t, PhaseQueued, got.Phase)
	require.Equal(t, 3*time.Minute, got.Remaining)
	require.Contains(t, got.Label, "3:00")
}

func TestEstimate_ProcessingCountsDownToMax(t *testing.T) {
	estimator := NewEstimator(DefaultWindow)
	now := time.Now()

	got := estimator.Estimate(now.Add(-6*time.Minute), now)
	require.Equal(t, PhaseProcessing, got.Phase)
	require.Equal(t, 14*time.Minute, got.Remaining)
	require.Contains(t, got.Label, "14:00")
}

func TestEstimate_OverdueHasStaticLabel(t *testing.T) {
	estimator := NewEstimator(DefaultWindow)
	now := time.Now()

	first := estimator.Estimate(now.Add(-21*time.Minute), now)
	second := estimator.Estimate(now.Add(-3*time.Hour), now)
	require.Equal(t, PhaseOverdue, first.Phase)
	require.Equal(t, first.Label, second.Label)
	require.Zero(t, first.Remaining)
}

func TestNewEstimator_RejectsDegenerateWindow(t *testing.T) {
	estimator := NewEstimator(Window{Min: 10 * time.Minute, Max: 5 * time.Minute})
	require.Equal(t, DefaultWindow, estimator.window)
}
