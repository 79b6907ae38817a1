package api

import "github.com/fkrieter/pyhf/pkg/workspace"

// FitRequest asks for a maximum-likelihood fit of a workspace. POIValue
// pins the parameter of interest; without it the fit floats everything.
// Data overrides the workspace observations, either as per-bin counts or
// as a full dataset with auxiliary observations appended.
type FitRequest struct {
	Workspace *workspace.Spec `json:"workspace"`
	POI       string          `json:"poi,omitempty"`
	POIValue  *float64        `json:"poi_value,omitempty"`
	Data      []float64       `json:"data,omitempty"`
}

type FitParameter struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type FitResponse struct {
	ID         string         `json:"id"`
	Object     string         `json:"object"`
	CreatedAt  int64          `json:"created_at"`
	POI        string         `json:"poi,omitempty"`
	POIValue   *float64       `json:"poi_value,omitempty"`
	Parameters []FitParameter `json:"parameters"`
	TwiceNLL   float64        `json:"twice_nll"`
	Iterations int            `json:"iterations"`
	Converged  bool           `json:"converged"`
}

type FitList struct {
	Object string        `json:"object"`
	Data   []FitResponse `json:"data"`
}

type DeleteFitResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// HypoTestRequest asks for an asymptotic CLs test. TestPOI defaults to a
// signal strength of one.
type HypoTestRequest struct {
	Workspace *workspace.Spec `json:"workspace"`
	POI       string          `json:"poi,omitempty"`
	TestPOI   *float64        `json:"test_poi,omitempty"`
	Data      []float64       `json:"data,omitempty"`
}

type HypoTestResponse struct {
	Object         string    `json:"object"`
	TestPOI        float64   `json:"test_poi"`
	CLs            float64   `json:"cls"`
	CLsb           float64   `json:"clsb"`
	CLb            float64   `json:"clb"`
	TestStat       float64   `json:"qmu"`
	TestStatAsimov float64   `json:"qmu_asimov"`
	NSigma         []float64 `json:"nsigma"`
	Expected       []float64 `json:"expected_cls"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
