package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/2beens/repscore/internal/exercise"
	"github.com/2beens/repscore/internal/repcounter"
	"github.com/2beens/repscore/internal/scoring"
	"github.com/2beens/repscore/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// PoseConfidenceThreshold is the confidence above which a frame counts as
// having a reliably detected pose in the pose data summary.
const PoseConfidenceThreshold = 0.5

// Analyze consumes the source frame by frame, counting repetitions of the
// given exercise, and scores the buffered series once the source is exhausted.
func Analyze(
	ctx context.Context,
	profile exercise.Profile,
	src SampleSource,
) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analysis.analyze")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise", profile.ID))

	counter := repcounter.New(profile.Name, profile.UpThreshold, profile.DownThreshold)
	series := scoring.Series{
		Timestamps: []float64{},
		Angles:     []float64{},
	}

	framesWithPose := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sample, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", len(series.Confidences)+1, err)
		}

		series.Confidences = append(series.Confidences, sample.Confidence)
		if sample.Confidence > PoseConfidenceThreshold {
			framesWithPose++
		}
		// no pose detected: counted as a frame, never fed to the counter
		if !sample.HasAngle || sample.Confidence == 0 {
			continue
		}

		series.Angles = append(series.Angles, sample.Angle)
		series.Timestamps = append(series.Timestamps, sample.Timestamp)
		counter.Update(sample.Angle)
	}

	meta := src.Meta()
	totalFrames := meta.TotalFrames
	if totalFrames <= 0 {
		totalFrames = len(series.Confidences)
	}
	var duration float64
	if meta.FPS > 0 {
		duration = float64(totalFrames) / meta.FPS
	}

	scores := scoring.Compute(series, counter.Reps())
	span.SetAttributes(
		attribute.Int("frames", len(series.Confidences)),
		attribute.Int("repetitions", counter.Reps()),
	)

	return &Result{
		ExerciseType: profile.ID,
		Repetitions:  counter.Reps(),
		Accuracy:     scores.Accuracy,
		Speed:        scores.Speed,
		Form:         scores.Form,
		Endurance:    scores.Endurance,
		TimeStamps:   series.Timestamps,
		Angles:       series.Angles,
		PoseData: PoseData{
			Confidence:     scoring.MeanConfidence(series.Confidences),
			TotalFrames:    totalFrames,
			FramesWithPose: framesWithPose,
			VideoDuration:  duration,
		},
	}, nil
}
