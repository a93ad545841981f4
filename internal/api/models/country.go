package models

// Country is one entry of the supported country list.
type Country struct {
	Code string    `json:"code"`
	Name string    `json:"name"`
	BBox []float64 `json:"bbox"`
}
