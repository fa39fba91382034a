package model

// Prediction is one detection returned by the classification backend.
type Prediction struct {
	ClassID    int        `json:"class_id"`
	ClassName  string     `json:"class_name"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// PredictResponse is the JSON body of a successful /predict/ call.
type PredictResponse struct {
	ProcessedImage string       `json:"processed_image"`
	Predictions    []Prediction `json:"predictions"`
}

// ViewState is everything the front-ends render for one upload cycle.
// Empty ImageURL and Error mean "not set".
type ViewState struct {
	ImageURL    string       `json:"imageUrl"`
	Predictions []Prediction `json:"predictions"`
	IsLoading   bool         `json:"isLoading"`
	Error       string       `json:"error"`
}

// HealthResponse is the JSON body of the backend health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
