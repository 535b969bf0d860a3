package analysis

import (
	"sync"

	"github.com/2beens/repscore/internal/scoring"

	"github.com/brianvoe/gofakeit/v6"
)

var simulatedBaseReps = map[string]int{
	"pushup":        15,
	"pullup":        8,
	"squat":         20,
	"bicepCurl":     12,
	"shoulderPress": 10,
	"burpee":        8,
	"sprint":        1,
	"plank":         1,
}

const (
	defaultSimulatedBaseReps = 10
	simulatedSamplesPerRep   = 4
	simulatedRepSeconds      = 2.5
)

// Simulator produces plausible canned results, used whenever the pose
// landmark service cannot deliver a frame series.
type Simulator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewSimulator creates a simulator; seed 0 picks a random seed.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		faker: gofakeit.New(seed),
	}
}

func (s *Simulator) Simulate(exerciseType string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := simulatedBaseReps[exerciseType]
	if !ok {
		base = defaultSimulatedBaseReps
	}
	reps := base + s.faker.IntRange(-3, 5)
	if reps < 0 {
		reps = 0
	}

	// four samples per 2.5s rep
	timestamps := make([]float64, reps*simulatedSamplesPerRep)
	angles := make([]float64, reps*simulatedSamplesPerRep)
	for i := range angles {
		timestamps[i] = float64(i) * simulatedRepSeconds / simulatedSamplesPerRep
		angles[i] = 90 + s.faker.Float64Range(-30, 30)
	}

	return &Result{
		ExerciseType: exerciseType,
		Repetitions:  reps,
		Accuracy:     scoring.Clamp(75 + s.faker.Float64Range(-10, 15)),
		Speed:        scoring.Clamp(70 + s.faker.Float64Range(-15, 20)),
		Form:         scoring.Clamp(80 + s.faker.Float64Range(-10, 15)),
		Endurance:    scoring.Clamp(85 + s.faker.Float64Range(-10, 10)),
		TimeStamps:   timestamps,
		Angles:       angles,
		PoseData: PoseData{
			Confidence:     0.85 + s.faker.Float64Range(-0.1, 0.1),
			TotalFrames:    300,
			FramesWithPose: 280,
			VideoDuration:  10.0,
		},
		Simulated: true,
	}
}
