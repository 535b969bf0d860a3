package scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// FallbackScore is returned when a series is too short to judge.
	FallbackScore = 70.0

	// IdealRepDuration is the cadence the speed score rewards, in seconds per rep.
	IdealRepDuration = 2.0

	minFormSamples      = 4
	minSpeedReps        = 2
	minSpeedTimestamps  = 2
	minEnduranceSamples = 10
	enduranceSegments   = 4
)

// Series is the per-frame data buffered during one analysis.
// Timestamps and Angles only hold frames with a usable angle, while
// Confidences holds one value for every decoded frame.
type Series struct {
	Timestamps  []float64
	Angles      []float64
	Confidences []float64
}

type Scores struct {
	Accuracy  float64 `json:"accuracy"`
	Speed     float64 `json:"speed"`
	Form      float64 `json:"form"`
	Endurance float64 `json:"endurance"`
}

// Compute runs the four scoring functions over the series and clamps each
// result into [0, 100].
func Compute(series Series, reps int) Scores {
	return Scores{
		Accuracy:  Clamp(Accuracy(series.Confidences)),
		Speed:     Clamp(Speed(series.Timestamps, reps)),
		Form:      Clamp(Form(series.Angles)),
		Endurance: Clamp(Endurance(series.Confidences)),
	}
}

// Clamp limits a score to [0, 100]. NaN becomes 0.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

// MeanConfidence is the average pose confidence, 0 for an empty series.
func MeanConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	return stat.Mean(confidences, nil)
}

// Accuracy is the mean pose confidence scaled to 0-100.
func Accuracy(confidences []float64) float64 {
	return MeanConfidence(confidences) * 100
}

// Form rewards a consistent range of motion: the lower the spread of the
// angle series, the higher the score.
func Form(angles []float64) float64 {
	if len(angles) < minFormSamples {
		return FallbackScore
	}
	_, std := stat.PopMeanStdDev(angles, nil)
	return math.Max(0, 100-std/2)
}

// Speed penalizes the distance between the average time per repetition and
// IdealRepDuration, symmetrically for too fast and too slow.
func Speed(timestamps []float64, reps int) float64 {
	if reps < minSpeedReps || len(timestamps) < minSpeedTimestamps {
		return FallbackScore
	}
	total := timestamps[len(timestamps)-1] - timestamps[0]
	perRep := total / float64(reps)
	deviation := math.Abs(perRep - IdealRepDuration)
	return math.Max(0, 100-deviation*20)
}

// Endurance splits the confidence series in four contiguous segments, the
// last one taking the remainder, and scores the weakest segment mean.
func Endurance(confidences []float64) float64 {
	if len(confidences) < minEnduranceSamples {
		return FallbackScore
	}

	size := len(confidences) / enduranceSegments
	lowest := math.Inf(1)
	for i := 0; i < enduranceSegments; i++ {
		end := (i + 1) * size
		if i == enduranceSegments-1 {
			end = len(confidences)
		}
		lowest = math.Min(lowest, stat.Mean(confidences[i*size:end], nil))
	}

	return lowest * 100
}
