package models

// RetrievalResult is one candidate passage returned by the index for a query.
// Distance is the index-assigned dissimilarity (lower is closer); nil means
// the index returned no distance signal. The three score fields are filled in
// by the ranker and are all in [0, 1].
type RetrievalResult struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	ID       string   `json:"id"`
	Distance *float64 `json:"distance,omitempty"`

	ContentScore  float64 `json:"content_score"`
	MetadataScore float64 `json:"metadata_score"`
	FinalScore    float64 `json:"final_score"`
}
