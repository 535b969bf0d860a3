package analysis

import (
	"context"
	"io"
)

// Sample is the observation made on one decoded video frame.
type Sample struct {
	// Timestamp in seconds from the start of the video.
	Timestamp float64 `json:"timestamp"`
	// Angle of the tracked joint in degrees. Only meaningful when HasAngle is set.
	Angle float64 `json:"angle"`
	// Confidence of the pose detection, 0 when no pose was found.
	Confidence float64 `json:"confidence"`
	HasAngle   bool    `json:"has_angle"`
}

type VideoMeta struct {
	FPS float64 `json:"fps"`
	// TotalFrames as reported by the video container, 0 if unknown.
	TotalFrames int `json:"total_frames"`
}

// SampleSource hands out samples one frame at a time.
// Next returns io.EOF once the video is exhausted.
type SampleSource interface {
	Next(ctx context.Context) (Sample, error)
	Meta() VideoMeta
}

// SampleStream is a SampleSource backed by a resource that has to be released.
type SampleStream interface {
	SampleSource
	io.Closer
}

// SliceSource serves samples that were already extracted, e.g. sent by the client.
type SliceSource struct {
	samples []Sample
	meta    VideoMeta
	pos     int
}

func NewSliceSource(samples []Sample, meta VideoMeta) *SliceSource {
	return &SliceSource{
		samples: samples,
		meta:    meta,
	}
}

func (s *SliceSource) Next(_ context.Context) (Sample, error) {
	if s.pos >= len(s.samples) {
		return Sample{}, io.EOF
	}
	sample := s.samples[s.pos]
	s.pos++
	return sample, nil
}

func (s *SliceSource) Meta() VideoMeta {
	return s.meta
}

func (s *SliceSource) Close() error {
	return nil
}
