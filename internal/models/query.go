package models

// Query types assigned by the classifier.
const (
	QueryTypeHowTo      = "how-to"
	QueryTypeComparison = "comparison"
	QueryTypeGeneral    = "general"
)

// Response types carried by QueryResponse.
const (
	ResponseTypeError      = "error"
	ResponseTypeIrrelevant = "irrelevant"
	ResponseTypeNoResults  = "no_results"
	ResponseTypeAnswer     = "answer"
	ResponseTypeComparison = "comparison"
)

// QueryAnalysis is the classifier's verdict on a raw question. For single
// queries Platform holds the first mentioned platform (empty if none); for
// comparison queries Platforms holds every mentioned platform and Feature the
// extracted comparison phrase, if any.
type QueryAnalysis struct {
	Platform   string   `json:"platform,omitempty"`
	QueryType  string   `json:"query_type"`
	IsRelevant bool     `json:"is_relevant"`
	Platforms  []string `json:"platforms,omitempty"`
	Feature    string   `json:"feature,omitempty"`
}

// QueryResponse is the pipeline's typed outcome, consumed by the response
// assembler. Exactly one of Results or Comparison is populated for the
// answer/comparison types; Message carries the user-facing text for the
// error, irrelevant and no_results types.
type QueryResponse struct {
	Type       string                       `json:"type"`
	Query      string                       `json:"query"`
	Message    string                       `json:"message,omitempty"`
	Analysis   QueryAnalysis                `json:"analysis"`
	Results    []RetrievalResult            `json:"results,omitempty"`
	Comparison map[string][]RetrievalResult `json:"comparison,omitempty"`
}
