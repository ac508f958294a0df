package model

// AnalysisResult is one per-file record returned by the analysis service.
// Missing fields decode to empty strings; they render as empty sections
// rather than being treated as an error.
type AnalysisResult struct {
	Filename  string `json:"filename"`
	Report    string `json:"report"`
	FixedCode string `json:"fixed_code"`
}

// FileReview joins an AnalysisResult back to the original content of the
// matching accepted file. Original is empty when the service returned a
// filename we never sent.
type FileReview struct {
	Filename  string
	Original  string
	Report    string
	FixedCode string
}

// RequestState is the lifecycle stage of the current analyze submission.
type RequestState int

// RequestState values. Exactly one is active at a time; transitions drive
// which view (loading, results, error) is visible.
const (
	StateIdle RequestState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}
