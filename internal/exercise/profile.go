package exercise

import (
	"errors"
	"fmt"
	"sort"
)

const DefaultID = "pushup"

var (
	ErrUnknownExercise   = errors.New("unknown exercise")
	ErrInvalidThresholds = errors.New("invalid thresholds")
)

// Profile describes which joint angle is tracked for an exercise and the
// two angles that delimit one repetition.
type Profile struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Landmarks     [3]Landmark `json:"landmarks"`
	UpThreshold   float64     `json:"upThreshold"`
	DownThreshold float64     `json:"downThreshold"`
}

var (
	arm      = [3]Landmark{LeftShoulder, LeftElbow, LeftWrist}
	leg      = [3]Landmark{LeftHip, LeftKnee, LeftAnkle}
	registry = map[string]Profile{
		"pushup": {
			ID:            "pushup",
			Name:          "Push-up",
			Landmarks:     arm,
			UpThreshold:   160,
			DownThreshold: 90,
		},
		"pullup": {
			ID:            "pullup",
			Name:          "Pull-up",
			Landmarks:     arm,
			UpThreshold:   160,
			DownThreshold: 90,
		},
		"squat": {
			ID:            "squat",
			Name:          "Squat",
			Landmarks:     leg,
			UpThreshold:   160,
			DownThreshold: 70,
		},
		"bicepCurl": {
			ID:            "bicepCurl",
			Name:          "Bicep Curl",
			Landmarks:     arm,
			UpThreshold:   160,
			DownThreshold: 60,
		},
		"shoulderPress": {
			ID:            "shoulderPress",
			Name:          "Shoulder Press",
			Landmarks:     arm,
			UpThreshold:   160,
			DownThreshold: 90,
		},
		"sprint": {
			ID:            "sprint",
			Name:          "40m Sprint",
			Landmarks:     leg,
			UpThreshold:   180,
			DownThreshold: 30,
		},
		"burpee": {
			ID:            "burpee",
			Name:          "Burpee",
			Landmarks:     [3]Landmark{LeftShoulder, LeftHip, LeftKnee},
			UpThreshold:   160,
			DownThreshold: 45,
		},
		"plank": {
			ID:            "plank",
			Name:          "Plank Hold",
			Landmarks:     [3]Landmark{LeftShoulder, LeftHip, LeftAnkle},
			UpThreshold:   180,
			DownThreshold: 160,
		},
	}
)

// Lookup returns the profile registered under id.
func Lookup(id string) (Profile, error) {
	p, ok := registry[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownExercise, id)
	}
	return p, nil
}

// Resolve is the permissive variant of Lookup: unknown ids get the push-up
// profile, and the returned bool is false when that fallback was used.
func Resolve(id string) (Profile, bool) {
	if p, ok := registry[id]; ok {
		return p, true
	}
	return registry[DefaultID], false
}

// All returns every registered profile, ordered by id.
func All() []Profile {
	profiles := make([]Profile, 0, len(registry))
	for _, p := range registry {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ID < profiles[j].ID
	})
	return profiles
}

// WithThresholds returns a copy of the profile with the given thresholds.
// Zero values keep the profile's own threshold.
func (p Profile) WithThresholds(up, down float64) (Profile, error) {
	if up != 0 {
		p.UpThreshold = up
	}
	if down != 0 {
		p.DownThreshold = down
	}
	if p.DownThreshold >= p.UpThreshold {
		return Profile{}, fmt.Errorf("%w: down [%.1f] must be below up [%.1f]",
			ErrInvalidThresholds, p.DownThreshold, p.UpThreshold)
	}
	if p.DownThreshold < 0 || p.UpThreshold > 180 {
		return Profile{}, fmt.Errorf("%w: must be within [0, 180]", ErrInvalidThresholds)
	}
	return p, nil
}
