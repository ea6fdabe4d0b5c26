package pose

const (
	// LandmarkCount is the number of joints in the BlazePose topology.
	LandmarkCount = 33

	MessageNoPerson    = "No se detectó ninguna persona en la imagen"
	MessageNoPersonTip = "Asegúrate de que la persona esté completamente visible en la imagen"
)

type Landmark struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

type Connection [2]int

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectionResponse is returned with HTTP 200 both when a pose was found and when
// the image contained no person. Success tells the two apart.
type DetectionResponse struct {
	Success         bool             `json:"success"`
	Landmarks       []Landmark       `json:"landmarks,omitempty"`
	Connections     []Connection     `json:"connections,omitempty"`
	TotalLandmarks  int              `json:"total_landmarks,omitempty"`
	ImageDimensions *ImageDimensions `json:"image_dimensions,omitempty"`
	Error           string           `json:"error,omitempty"`
	Tip             string           `json:"tip,omitempty"`
}

type BannerResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NoPersonResponse() *DetectionResponse {
	return &DetectionResponse{
		Success: false,
		Error:   MessageNoPerson,
		Tip:     MessageNoPersonTip,
	}
}
