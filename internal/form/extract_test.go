package form

import "testing"

func TestFindByLabel(t *testing.T) {
	fields := []Field{
		{Key: "a", Label: "1: Email", Value: "a@x.com"},
		{Key: "b", Label: "1: Email address (work)", Value: "b@x.com"},
		{Key: "c", Label: "Team ID", Value: "s1"},
	}

	got := FindByLabel(fields, "1: Email")
	if got == nil || got.Key != "a" {
		t.Fatalf("expected first substring match (key a), got %+v", got)
	}

	if FindByLabel(fields, "Phone") != nil {
		t.Fatal("expected nil for absent label")
	}
	if FindByLabel(nil, "Team ID") != nil {
		t.Fatal("expected nil for nil field list")
	}
	if FindByLabel([]Field{}, "Team ID") != nil {
		t.Fatal("expected nil for empty field list")
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"  A@X.COM ", "a@x.com"},
		{"a@x.com", "a@x.com"},
		{"", ""},
		{nil, ""},
		{42, ""},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Errorf("NormalizeEmail(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	// Idempotence
	once := NormalizeEmail("  A@X.COM ")
	if NormalizeEmail(once) != once {
		t.Error("NormalizeEmail is not idempotent")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{" 1 2 3\t4 ", "1234"},
		{"+91 98765 43210", "+919876543210"},
		{"", ""},
		{nil, ""},
		{12, ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	once := NormalizePhone(" 1 1 1 ")
	if NormalizePhone(once) != once {
		t.Error("NormalizePhone is not idempotent")
	}
}

func TestExtractTeamPairs(t *testing.T) {
	rec := &Record{Data: RecordData{Fields: []Field{
		{Label: "1: Email", Value: "A@X.com "},
		{Label: "1: Phone number", Value: " 111 "},
		{Label: "2: Email", Value: "b@y.com"},
		// 2: Phone number missing -> index skipped
		{Label: "3: Email", Value: ""},
		{Label: "3: Phone number", Value: "333"},
		{Label: "4: Email", Value: "d@z.com"},
		{Label: "4: Phone number", Value: "444"},
	}}}

	pairs := ExtractTeamPairs(rec)
	want := []TeamPair{
		{Email: "a@x.com", Phone: "111"},
		{Email: "d@z.com", Phone: "444"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("expected %d pairs, got %d: %+v", len(want), len(pairs), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestAuthorize(t *testing.T) {
	pairs := []TeamPair{
		{Email: "a@x.com", Phone: "111"},
		{Email: "b@y.com", Phone: "222"},
	}

	if !Authorize(pairs, NormalizeEmail("A@X.COM"), NormalizePhone(" 111 ")) {
		t.Error("case/whitespace-insensitive match should authorize")
	}
	if Authorize(pairs, "c@z.com", "333") {
		t.Error("unknown pair should not authorize")
	}
	if Authorize(pairs, "a@x.com", "222") {
		t.Error("mixed pair should not authorize")
	}
	if Authorize(nil, "a@x.com", "111") {
		t.Error("zero pairs must never authorize")
	}
}
