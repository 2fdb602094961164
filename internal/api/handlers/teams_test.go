package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enrolhq/enrolment-relay/internal/form"
	"github.com/enrolhq/enrolment-relay/internal/store"
)

func storedTeamRecord(t *testing.T, mem *store.Memory) {
	t.Helper()
	rec := `{
		"eventId": "evt-prior",
		"createdAt": "2024-01-01T00:00:00Z",
		"data": {
			"responseId": "r1",
			"submissionId": "s1",
			"respondentId": "p1",
			"formId": "f1",
			"formName": "Team Registration",
			"createdAt": "2024-01-01T00:00:00Z",
			"fields": [
				{"key": "k-name", "label": "Team name", "type": "INPUT_TEXT", "value": "Rocket"},
				{"key": "k-track", "label": "Project track", "value": "Web"},
				{"key": "k1e", "label": "1: Email", "value": "a@x.com"},
				{"key": "k1p", "label": "1: Phone number", "value": "111"},
				{"key": "k2e", "label": "2: Email", "value": "b@y.com"},
				{"key": "k2p", "label": "2: Phone number", "value": "222"}
			]
		}
	}`
	if err := mem.Push(context.Background(), "enrolment-participants-teams", rec); err != nil {
		t.Fatal(err)
	}
}

func teamUpdateBody(email, phone, teamID string) []byte {
	update := map[string]any{
		"eventId":   "evt-update",
		"createdAt": "2024-02-02T00:00:00Z",
		"data": map[string]any{
			"responseId":   "r2",
			"submissionId": "s2",
			"respondentId": "p2",
			"formId":       "f2",
			"formName":     "Team Update",
			"createdAt":    "2024-02-02T00:00:00Z",
			"fields": []map[string]any{
				{"key": "ke", "label": "Email of person filling this form", "value": email},
				{"key": "kp", "label": "Phone number of person filling this form", "value": phone},
				{"key": "kt", "label": "Team ID", "value": teamID},
				{"key": "k-name-v2", "label": "Team name", "value": "Rocket Renamed"},
				{"key": "k-track-v2", "label": "Project track", "value": ""},
				{"key": "k-new", "label": "Repository URL", "value": "https://example.com/repo"},
			},
		},
	}
	buf, _ := json.Marshal(update)
	return buf
}

func TestTeamUpdate_BadSignature(t *testing.T) {
	router := newTestRouter(store.NewMemory())

	body := teamUpdateBody("a@x.com", "111", "s1")
	req := httptest.NewRequest(http.MethodPost, "/webhook/participants/teams/update", bytes.NewReader(body))
	req.Header.Set("tally-signature", "bogus")

	if w := doRequest(router, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestTeamUpdate_BadJSON(t *testing.T) {
	router := newTestRouter(store.NewMemory())
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", []byte(`{"data":`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTeamUpdate_EmptyFields(t *testing.T) {
	router := newTestRouter(store.NewMemory())
	body := []byte(`{"eventId":"e","data":{"fields":[]}}`)
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTeamUpdate_MissingSubmitterContact(t *testing.T) {
	router := newTestRouter(store.NewMemory())
	body := []byte(`{"eventId":"e","data":{"fields":[{"label":"Team ID","value":"s1"}]}}`)
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTeamUpdate_MissingTeamID(t *testing.T) {
	router := newTestRouter(store.NewMemory())
	body := []byte(`{"eventId":"e","data":{"fields":[
		{"label":"Email of person filling this form","value":"a@x.com"},
		{"label":"Phone number of person filling this form","value":"111"}
	]}}`)
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTeamUpdate_UnknownTeamID(t *testing.T) {
	mem := store.NewMemory()
	storedTeamRecord(t, mem)
	router := newTestRouter(mem)

	body := teamUpdateBody("a@x.com", "111", "nope")
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestTeamUpdate_UnauthorizedSubmitter(t *testing.T) {
	mem := store.NewMemory()
	storedTeamRecord(t, mem)
	router := newTestRouter(mem)

	body := teamUpdateBody("c@z.com", "333", "s1")
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	// No partial write on the failure path.
	stored, _ := mem.Range(context.Background(), "enrolment-participants-teams")
	if len(stored) != 1 {
		t.Fatalf("unauthorized update must not write, list has %d entries", len(stored))
	}
}

func TestTeamUpdate_ZeroPairsNeverAuthorizes(t *testing.T) {
	mem := store.NewMemory()
	// Prior record with no member contact fields at all.
	rec := `{"eventId":"evt","data":{"submissionId":"s1","fields":[{"label":"Team name","value":"X"}]}}`
	mem.Push(context.Background(), "enrolment-participants-teams", rec)
	router := newTestRouter(mem)

	body := teamUpdateBody("a@x.com", "111", "s1")
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestTeamUpdate_MergesAndPrepends(t *testing.T) {
	mem := store.NewMemory()
	storedTeamRecord(t, mem)
	router := newTestRouter(mem)

	// Case/whitespace-insensitive authorization.
	body := teamUpdateBody("A@X.COM", " 111 ", "s1")
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	stored, _ := mem.Range(context.Background(), "enrolment-participants-teams")
	if len(stored) != 2 {
		t.Fatalf("expected merged record prepended, list has %d entries", len(stored))
	}

	var merged form.Record
	if err := json.Unmarshal([]byte(stored[0]), &merged); err != nil {
		t.Fatalf("head of list is not the merged record: %v", err)
	}

	if merged.PreviousTeamState != "s1" {
		t.Errorf("previous-team-state = %q, want s1", merged.PreviousTeamState)
	}
	if merged.EventID != "evt-update" || merged.Data.SubmissionID != "s2" || merged.Data.FormName != "Team Update" {
		t.Errorf("merged record must carry the update envelope: %+v", merged)
	}

	name := form.FindByLabel(merged.Data.Fields, "Team name")
	if name == nil || name.Value != "Rocket Renamed" {
		t.Errorf("updated value not applied: %+v", name)
	}
	track := form.FindByLabel(merged.Data.Fields, "Project track")
	if track == nil || track.Value != "Web" {
		t.Errorf("empty update value erased prior data: %+v", track)
	}
	if track != nil && track.Key != "k-track-v2" {
		t.Errorf("key not overwritten on empty-value update: %+v", track)
	}
	repo := form.FindByLabel(merged.Data.Fields, "Repository URL")
	if repo == nil || repo.Value != "https://example.com/repo" {
		t.Errorf("unseen label not appended: %+v", repo)
	}
	// Member contact fields ride along untouched.
	if f := form.FindByLabel(merged.Data.Fields, "2: Email"); f == nil || f.Value != "b@y.com" {
		t.Errorf("unrelated prior field lost: %+v", f)
	}
}

func TestTeamUpdate_FirstMatchWinsAndGarbageSkipped(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	mem.Push(ctx, "enrolment-participants-teams", `broken entry`)
	storedTeamRecord(t, mem) // first parseable s1
	mem.Push(ctx, "enrolment-participants-teams", `{"eventId":"evt-dup","data":{"submissionId":"s1","fields":[{"label":"1: Email","value":"other@q.com"},{"label":"1: Phone number","value":"999"}]}}`)
	router := newTestRouter(mem)

	// Authorized against the first record in list order, not the duplicate.
	body := teamUpdateBody("a@x.com", "111", "s1")
	w := doRequest(router, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// The duplicate's member would have been rejected.
	mem2 := store.NewMemory()
	mem2.Push(ctx, "enrolment-participants-teams", `broken entry`)
	storedTeamRecord(t, mem2)
	mem2.Push(ctx, "enrolment-participants-teams", `{"eventId":"evt-dup","data":{"submissionId":"s1","fields":[{"label":"1: Email","value":"other@q.com"},{"label":"1: Phone number","value":"999"}]}}`)
	router2 := newTestRouter(mem2)

	body = teamUpdateBody("other@q.com", "999", "s1")
	w = doRequest(router2, signedRequest(http.MethodPost, "/webhook/participants/teams/update", body))
	if w.Code != http.StatusForbidden {
		t.Fatalf("duplicate identifier must lose to first match, got %d", w.Code)
	}
}
