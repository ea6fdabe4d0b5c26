package entity

// DefaultVisibility is assumed for a landmark the pose model sent without a score.
const DefaultVisibility = 1.0

type WorldLandmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty" validate:"omitempty,gte=0,lte=1"`
}

func (l WorldLandmark) VisibilityOrDefault() float64 {
	if l.Visibility == nil {
		return DefaultVisibility
	}
	return *l.Visibility
}

// PoseDetectionResult is the message returned by the AI pose service for one frame.
// WorldLandmarks are in metres relative to the hip centre, not in pixels.
type PoseDetectionResult struct {
	Detected       bool            `json:"detected"`
	WorldLandmarks []WorldLandmark `json:"world_landmarks,omitempty" validate:"omitempty,len=33,dive"`
	Error          string          `json:"error,omitempty"`
}
