package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2beens/repscore/internal/analysis"
	"github.com/2beens/repscore/internal/exercise"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCmd(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExercisesCmd(t *testing.T) {
	out, err := runCLI(t, "", "exercises")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "squat")
	assert.Contains(t, out, "LEFT_HIP-LEFT_KNEE-LEFT_ANKLE")

	out, err = runCLI(t, "", "exercises", "--json")
	require.NoError(t, err)
	var profiles []exercise.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	assert.Len(t, profiles, 8)
}

func TestAnalyzeCmd_CSV(t *testing.T) {
	input := writeFile(t, "set.csv", strings.Join([]string{
		"timestamp,angle,confidence",
		"0.1,170,0.9",
		"0.2,160,0.9",
		"0.3,,0",
		"0.4,65,0.8",
		"0.5,70,0.8",
		"0.6,165,0.9",
	}, "\n"))

	out, err := runCLI(t, "", "analyze", "--exercise", "squat", "--input", input, "--fps", "10")
	require.NoError(t, err)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "squat", res.ExerciseType)
	assert.Equal(t, 1, res.Repetitions)
	assert.Len(t, res.Angles, 5)
	assert.Equal(t, 6, res.PoseData.TotalFrames)
	assert.Equal(t, 5, res.PoseData.FramesWithPose)
	assert.InDelta(t, 0.6, res.PoseData.VideoDuration, 1e-9)
}

func TestAnalyzeCmd_CSVZeroConfidenceRows(t *testing.T) {
	input := writeFile(t, "set.csv", strings.Join([]string{
		"timestamp,angle,confidence",
		"0.1,65,0",
		"0.2,165,0",
		"0.3,170,0.9",
	}, "\n"))

	out, err := runCLI(t, "", "analyze", "--exercise", "squat", "--input", input)
	require.NoError(t, err)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Repetitions)
	assert.Equal(t, []float64{170}, res.Angles)
	assert.Equal(t, []float64{0.3}, res.TimeStamps)
	assert.Equal(t, 3, res.PoseData.TotalFrames)
}

func TestAnalyzeCmd_ThresholdOverride(t *testing.T) {
	input := writeFile(t, "set.csv", "timestamp,angle,confidence\n0.1,170,1\n0.2,65,1\n0.3,170,1\n")

	out, err := runCLI(t, "", "analyze", "-e", "squat", "-i", input, "--down", "50")
	require.NoError(t, err)
	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Zero(t, res.Repetitions)

	_, err = runCLI(t, "", "analyze", "-e", "squat", "-i", input, "--down", "170")
	assert.ErrorIs(t, err, exercise.ErrInvalidThresholds)
}

func TestAnalyzeCmd_UnknownExercise(t *testing.T) {
	input := writeFile(t, "set.csv", "timestamp,angle,confidence\n0.1,170,1\n")

	out, err := runCLI(t, "", "analyze", "-e", "handstand", "-i", input)
	require.NoError(t, err)
	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, exercise.DefaultID, res.ExerciseType)

	_, err = runCLI(t, "", "analyze", "-e", "handstand", "-i", input, "--strict")
	assert.ErrorIs(t, err, exercise.ErrUnknownExercise)
}

func TestAnalyzeCmd_LandmarksFromStdin(t *testing.T) {
	var lines []string
	lines = append(lines, `{"fps":30,"total_frames":3}`)
	// shoulder, elbow, wrist: straight, bent, straight
	for i, wristX := range []float64{0.5, 0.8, 0.5} {
		points := make([]string, exercise.PoseLandmarksCount)
		for j := range points {
			points[j] = `{"x":0,"y":0}`
		}
		points[11] = `{"x":0.5,"y":0.2}`
		points[13] = `{"x":0.5,"y":0.5}`
		wristY := 0.8
		if wristX != 0.5 {
			wristY = 0.5
		}
		points[15] = fmt.Sprintf(`{"x":%v,"y":%v}`, wristX, wristY)
		lines = append(lines, fmt.Sprintf(`{"frame":%d,"landmarks":[%s]}`, i+1, strings.Join(points, ",")))
	}

	out, err := runCLI(t, strings.Join(lines, "\n"), "analyze", "-i", "-")
	require.NoError(t, err)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "pushup", res.ExerciseType)
	assert.Equal(t, 1, res.Repetitions)
	assert.InDelta(t, 0.9, res.PoseData.Confidence, 1e-9)
	assert.InDelta(t, 0.1, res.PoseData.VideoDuration, 1e-9)
}

func TestAnalyzeCmd_BadInput(t *testing.T) {
	_, err := runCLI(t, "", "analyze")
	require.Error(t, err)

	_, err = runCLI(t, "", "analyze", "-i", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	badHeader := writeFile(t, "bad.csv", "time,angle,conf\n0.1,170,1\n")
	_, err = runCLI(t, "", "analyze", "-i", badHeader)
	require.ErrorContains(t, err, "unexpected csv header")

	badValue := writeFile(t, "bad_value.csv", "timestamp,angle,confidence\n0.1,abc,1\n")
	_, err = runCLI(t, "", "analyze", "-i", badValue)
	require.ErrorContains(t, err, "csv line 2")
}
