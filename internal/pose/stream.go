package pose

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/2beens/repscore/internal/analysis"
	"github.com/2beens/repscore/internal/exercise"
	"github.com/2beens/repscore/internal/geometry"
)

// confidence of a detected pose whose landmarks carry no visibility
const defaultVisibility = 0.9

var ErrInvalidHeader = errors.New("invalid landmarks stream header")

type Header struct {
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
}

type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Visibility *float64 `json:"visibility,omitempty"`
}

type Frame struct {
	Index     int        `json:"frame"`
	Landmarks []Landmark `json:"landmarks"`
}

// Stream turns NDJSON encoded pose landmark frames into analysis samples,
// decoding one frame per Next call.
type Stream struct {
	body    io.ReadCloser
	decoder *json.Decoder
	meta    analysis.VideoMeta
	joint   [3]int
	read    int
}

var _ analysis.SampleStream = (*Stream)(nil)

// NewStream reads the header line from body and prepares frame decoding
// for the joint tracked by profile. body is closed by Stream.Close.
func NewStream(body io.ReadCloser, profile exercise.Profile) (*Stream, error) {
	var joint [3]int
	for i, lm := range profile.Landmarks {
		idx, err := lm.Index()
		if err != nil {
			return nil, err
		}
		joint[i] = idx
	}

	decoder := json.NewDecoder(bufio.NewReader(body))
	var header Header
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if header.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %v", ErrInvalidHeader, header.FPS)
	}

	return &Stream{
		body:    body,
		decoder: decoder,
		joint:   joint,
		meta: analysis.VideoMeta{
			FPS:         header.FPS,
			TotalFrames: header.TotalFrames,
		},
	}, nil
}

func (s *Stream) Next(ctx context.Context) (analysis.Sample, error) {
	if err := ctx.Err(); err != nil {
		return analysis.Sample{}, err
	}

	var frame Frame
	if err := s.decoder.Decode(&frame); err != nil {
		if errors.Is(err, io.EOF) {
			return analysis.Sample{}, io.EOF
		}
		return analysis.Sample{}, fmt.Errorf("decode frame: %w", err)
	}
	s.read++
	if frame.Index <= 0 {
		frame.Index = s.read
	}

	return s.sample(frame), nil
}

func (s *Stream) sample(frame Frame) analysis.Sample {
	sample := analysis.Sample{
		Timestamp: float64(frame.Index) / s.meta.FPS,
	}
	if len(frame.Landmarks) == 0 {
		return sample
	}

	sample.Confidence = defaultVisibility
	if v := frame.Landmarks[0].Visibility; v != nil {
		sample.Confidence = *v
	}

	for _, idx := range s.joint {
		if idx >= len(frame.Landmarks) {
			return sample
		}
	}
	a, b, c := frame.Landmarks[s.joint[0]], frame.Landmarks[s.joint[1]], frame.Landmarks[s.joint[2]]
	sample.Angle, sample.HasAngle = geometry.JointAngle(
		geometry.Point{X: a.X, Y: a.Y},
		geometry.Point{X: b.X, Y: b.Y},
		geometry.Point{X: c.X, Y: c.Y},
	)

	return sample
}

func (s *Stream) Meta() analysis.VideoMeta {
	return s.meta
}

func (s *Stream) Close() error {
	return s.body.Close()
}
