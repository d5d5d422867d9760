package entity

// DefaultLinkText labels citations whose source has no title.
const DefaultLinkText = "Reference"

// Query is a student question as received at the service boundary.
type Query struct {
	Question string  `json:"question"`
	Image    *string `json:"image,omitempty"` // base64 encoded
	TopK     int     `json:"top_k,omitempty"`
}

// Link is a citation attached to an answer.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Answer is the grounded reply returned to the student.
type Answer struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}

// CompletionRequest is a single-turn prompt for the completion API.
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports service liveness and the loaded snapshot.
type HealthResponse struct {
	Status     string `json:"status"`
	Chunks     int    `json:"chunks"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Backend    string `json:"backend"`
}
