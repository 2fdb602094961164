package form

// Merge lays an update payload over a copy of the prior record and returns
// the result. Neither input is mutated.
//
// Field-level rules, keyed by exact label match:
//   - value is replaced only when the update supplies a non-nil, non-empty
//     value; an empty update never erases existing data
//   - key is always replaced (keys drift between form versions)
//   - type and options are replaced when the update supplies them
//   - update fields with labels unknown to the prior record are appended
//
// The merged record carries the update's envelope identity (event ID,
// timestamps, response/submission/respondent/form identifiers) over the
// prior record's field content, and records the prior record's identifier
// in previous-team-state.
func Merge(prior, update *Record) *Record {
	merged := *prior
	merged.Data.Fields = make([]Field, len(prior.Data.Fields))
	copy(merged.Data.Fields, prior.Data.Fields)

	for _, uf := range update.Data.Fields {
		if uf.Label == "" {
			continue
		}

		idx := -1
		for i := range merged.Data.Fields {
			if merged.Data.Fields[i].Label == uf.Label {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged.Data.Fields = append(merged.Data.Fields, uf)
			continue
		}

		f := &merged.Data.Fields[idx]
		if uf.Value != nil && uf.Value != "" {
			f.Value = uf.Value
		}
		f.Key = uf.Key
		if uf.Type != "" {
			f.Type = uf.Type
		}
		if uf.Options != nil {
			f.Options = uf.Options
		}
	}

	merged.PreviousTeamState = prior.ID()

	merged.EventID = update.EventID
	merged.CreatedAt = update.CreatedAt
	merged.Data.ResponseID = update.Data.ResponseID
	merged.Data.SubmissionID = update.Data.SubmissionID
	merged.Data.RespondentID = update.Data.RespondentID
	merged.Data.FormID = update.Data.FormID
	merged.Data.FormName = update.Data.FormName
	merged.Data.CreatedAt = update.Data.CreatedAt

	return &merged
}
