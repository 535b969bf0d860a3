package analysis

type PoseData struct {
	Confidence     float64 `json:"confidence"`
	TotalFrames    int     `json:"total_frames"`
	FramesWithPose int     `json:"frames_with_pose"`
	VideoDuration  float64 `json:"video_duration"`
}

// Result is the response payload of one analysis.
type Result struct {
	ExerciseType string    `json:"exercise_type"`
	Repetitions  int       `json:"repetitions"`
	Accuracy     float64   `json:"accuracy"`
	Speed        float64   `json:"speed"`
	Form         float64   `json:"form"`
	Endurance    float64   `json:"endurance"`
	TimeStamps   []float64 `json:"time_stamps"`
	Angles       []float64 `json:"angles"`
	PoseData     PoseData  `json:"pose_data"`
	Simulated    bool      `json:"simulated,omitempty"`
}
