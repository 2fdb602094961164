package form

// Field is one labeled answer in a form submission. The label is the stable
// human-readable identifier used for matching across form versions; the key
// may change when the form is edited.
type Field struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Type    string `json:"type,omitempty"`
	Value   any    `json:"value"`
	Options any    `json:"options,omitempty"`
}

// RecordData is the inner payload of a submission event.
type RecordData struct {
	ResponseID   string  `json:"responseId"`
	SubmissionID string  `json:"submissionId"`
	RespondentID string  `json:"respondentId"`
	FormID       string  `json:"formId"`
	FormName     string  `json:"formName"`
	CreatedAt    string  `json:"createdAt"`
	Fields       []Field `json:"fields"`
}

// Record is one stored submission event. PreviousTeamState is set only on
// merged team records and points at the identifier of the record it
// supersedes.
type Record struct {
	EventID           string     `json:"eventId"`
	CreatedAt         string     `json:"createdAt"`
	Data              RecordData `json:"data"`
	PreviousTeamState string     `json:"previous-team-state,omitempty"`
}

// ID returns the record's best-effort unique identifier: the submission ID,
// falling back to the response ID.
func (r *Record) ID() string {
	if r.Data.SubmissionID != "" {
		return r.Data.SubmissionID
	}
	return r.Data.ResponseID
}
