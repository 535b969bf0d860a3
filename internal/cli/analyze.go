package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2beens/repscore/internal/analysis"
	"github.com/2beens/repscore/internal/exercise"
	"github.com/2beens/repscore/internal/pose"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var csvHeader = []string{"timestamp", "angle", "confidence"}

type analyzeOptions struct {
	exercise string
	input    string
	strict   bool
	up       float64
	down     float64
	fps      float64
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a recorded set and print the result as JSON",
		Long: `Analyze reads either a landmark stream as produced by the pose service
(NDJSON, header line first) or a CSV of pre-computed samples with the header
"timestamp,angle,confidence". An empty angle marks a frame without a usable angle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runAnalyze(cmd, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.exercise, "exercise", "e", exercise.DefaultID, "exercise type")
	flags.StringVarP(&opts.input, "input", "i", "", "input file (.ndjson/.jsonl landmarks or .csv samples), - for stdin landmarks")
	flags.BoolVar(&opts.strict, "strict", false, "fail on unknown exercise instead of falling back to push-up")
	flags.Float64Var(&opts.up, "up", 0, "override the up threshold (degrees)")
	flags.Float64Var(&opts.down, "down", 0, "override the down threshold (degrees)")
	flags.Float64Var(&opts.fps, "fps", 0, "frame rate of CSV input, used for the video duration")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) (*analysis.Result, error) {
	profile, err := resolveProfile(opts)
	if err != nil {
		return nil, err
	}

	var in io.ReadCloser
	if opts.input == "-" {
		in = io.NopCloser(cmd.InOrStdin())
	} else {
		f, err := os.Open(opts.input)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		in = f
	}

	var src analysis.SampleStream
	if strings.EqualFold(filepath.Ext(opts.input), ".csv") {
		samples, err := readSamplesCSV(in)
		_ = in.Close()
		if err != nil {
			return nil, err
		}
		src = analysis.NewSliceSource(samples, analysis.VideoMeta{FPS: opts.fps})
	} else {
		stream, err := pose.NewStream(in, profile)
		if err != nil {
			_ = in.Close()
			return nil, err
		}
		src = stream
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warnf("close input: %s", err)
		}
	}()

	log.Debugf("analyzing [%s] as [%s], up %.1f down %.1f", opts.input, profile.ID, profile.UpThreshold, profile.DownThreshold)
	return analysis.Analyze(cmd.Context(), profile, src)
}

func resolveProfile(opts analyzeOptions) (exercise.Profile, error) {
	var profile exercise.Profile
	if opts.strict {
		p, err := exercise.Lookup(opts.exercise)
		if err != nil {
			return exercise.Profile{}, err
		}
		profile = p
	} else {
		p, known := exercise.Resolve(opts.exercise)
		if !known {
			log.Warnf("unknown exercise type [%s], using [%s] profile", opts.exercise, p.ID)
		}
		profile = p
	}
	return profile.WithThresholds(opts.up, opts.down)
}

func readSamplesCSV(r io.Reader) ([]analysis.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range csvHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("unexpected csv header %v, want %v", header, csvHeader)
		}
	}

	var samples []analysis.Sample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		sample, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func parseSample(record []string) (analysis.Sample, error) {
	ts, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return analysis.Sample{}, fmt.Errorf("timestamp: %w", err)
	}
	confidence, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return analysis.Sample{}, fmt.Errorf("confidence: %w", err)
	}

	sample := analysis.Sample{
		Timestamp:  ts,
		Confidence: confidence,
	}
	if record[1] != "" && confidence > 0 {
		angle, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return analysis.Sample{}, fmt.Errorf("angle: %w", err)
		}
		sample.Angle = angle
		sample.HasAngle = true
	}
	return sample, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
