package pipeline

// Failure records one question that could not be extracted or loaded.
// ExternalID is the question's external id when it was readable, "" otherwise.
type Failure struct {
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

// Report summarizes one load run. Per-item failures never abort the batch;
// they accumulate here so a partial success is always visible.
type Report struct {
	RunID     string    `json:"run_id"`
	Succeeded int       `json:"succeeded"`
	Failed    []Failure `json:"failed,omitempty"`
}

// addFailure records a failed question.
func (r *Report) addFailure(externalID, reason string) {
	r.Failed = append(r.Failed, Failure{ExternalID: externalID, Reason: reason})
}
