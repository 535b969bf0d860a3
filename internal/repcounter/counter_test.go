package repcounter_test

import (
	"math"
	"testing"

	"github.com/2beens/repscore/internal/repcounter"

	"github.com/stretchr/testify/assert"
)

func feed(c *repcounter.Counter, angles ...float64) {
	for _, a := range angles {
		c.Update(a)
	}
}

func TestCounter_Squat(t *testing.T) {
	testCases := []struct {
		name          string
		angles        []float64
		expectedReps  int
		expectedPhase repcounter.Phase
	}{
		{
			name:          "one full cycle",
			angles:        []float64{170, 160, 65, 70, 165},
			expectedReps:  1,
			expectedPhase: repcounter.AwaitingDown,
		},
		{
			name:          "never reaches down threshold",
			angles:        []float64{170, 160, 150, 140},
			expectedReps:  0,
			expectedPhase: repcounter.AwaitingDown,
		},
		{
			name:          "noise around down threshold",
			angles:        []float64{70, 69, 71, 68, 72},
			expectedReps:  0,
			expectedPhase: repcounter.AwaitingUp,
		},
		{
			name:          "thresholds are inclusive",
			angles:        []float64{70, 160},
			expectedReps:  1,
			expectedPhase: repcounter.AwaitingDown,
		},
		{
			name:          "three reps with jitter",
			angles:        []float64{170, 69, 72, 68, 161, 158, 162, 60, 100, 165, 40, 175},
			expectedReps:  3,
			expectedPhase: repcounter.AwaitingDown,
		},
		{
			name:          "NaN never transitions",
			angles:        []float64{math.NaN(), 65, math.NaN(), math.NaN()},
			expectedReps:  0,
			expectedPhase: repcounter.AwaitingUp,
		},
		{
			name:          "unclamped angles compare as is",
			angles:        []float64{-20, 400},
			expectedReps:  1,
			expectedPhase: repcounter.AwaitingDown,
		},
		{
			name:          "empty",
			expectedReps:  0,
			expectedPhase: repcounter.AwaitingDown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := repcounter.New("Squat", 160, 70)
			feed(&c, tc.angles...)
			assert.Equal(t, tc.expectedReps, c.Reps())
			assert.Equal(t, tc.expectedPhase, c.Phase())
			assert.Equal(t, "Squat", c.Exercise())
		})
	}
}

func TestCounter_IsolatedPerValue(t *testing.T) {
	a := repcounter.New("Push-up", 160, 90)
	b := a
	feed(&a, 80, 170, 85, 165)
	assert.Equal(t, 2, a.Reps())
	assert.Equal(t, 0, b.Reps())
	assert.Equal(t, repcounter.AwaitingDown, b.Phase())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "AWAITING_DOWN", repcounter.AwaitingDown.String())
	assert.Equal(t, "AWAITING_UP", repcounter.AwaitingUp.String())
	assert.Equal(t, "UNKNOWN", repcounter.Phase(7).String())
}
