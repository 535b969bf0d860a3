package exercise

import "fmt"

// Landmark is a body landmark name, as used by the MediaPipe Pose model.
type Landmark string

const (
	Nose         Landmark = "NOSE"
	LeftShoulder Landmark = "LEFT_SHOULDER"
	LeftElbow    Landmark = "LEFT_ELBOW"
	LeftWrist    Landmark = "LEFT_WRIST"
	LeftHip      Landmark = "LEFT_HIP"
	LeftKnee     Landmark = "LEFT_KNEE"
	LeftAnkle    Landmark = "LEFT_ANKLE"
)

// PoseLandmarksCount is the number of landmarks the pose model reports per frame.
const PoseLandmarksCount = 33

var landmarkIndex = map[Landmark]int{
	Nose:         0,
	LeftShoulder: 11,
	LeftElbow:    13,
	LeftWrist:    15,
	LeftHip:      23,
	LeftKnee:     25,
	LeftAnkle:    27,
}

// Index returns the position of the landmark in a pose model frame.
func (l Landmark) Index() (int, error) {
	idx, ok := landmarkIndex[l]
	if !ok {
		return -1, fmt.Errorf("unknown landmark: %s", string(l))
	}
	return idx, nil
}
