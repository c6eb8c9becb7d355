package models

// SearchRequest is the body of POST /api/v1/search-image.
type SearchRequest struct {
	Text string `json:"text"`
}

// SearchMatch is a single ranked hit from the vector index.
type SearchMatch struct {
	ImageName string  `json:"image_name"`
	Score     float64 `json:"score"`
}

// SearchResponse carries the ranked matches plus a signed token binding the
// top match to the query. Token is empty when there are no matches.
type SearchResponse struct {
	Matches []SearchMatch `json:"matches"`
	Token   string        `json:"token,omitempty"`
}

// FeedbackRequest is the body of POST /api/v1/create-feedback. The token must
// be one previously returned by a search response.
type FeedbackRequest struct {
	Token  string `json:"token"`
	Rating int    `json:"user_feedback"`
}

// FeedbackResponse returns the identifier of the stored feedback row.
type FeedbackResponse struct {
	ID int64 `json:"id"`
}
