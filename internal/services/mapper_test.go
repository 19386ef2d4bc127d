package services

import (
	"strings"
	"testing"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
)

func TestMapPublicPayloadFullSubmission(t *testing.T) {
	payload := map[string]any{
		"timestamp":                  "2024-05-01T10:00:00Z",
		"fullName":                   "  Иван Петров  ",
		"phone":                      " +7 (900) 123-45-67 ",
		"email":                      "ivan@example.com",
		"city":                       "Казань",
		"comment":                    " готов начать ",
		"age18Confirmed":             true,
		"consentData":                1.0,
		"consentContact":             "yes",
		"step1_confirm_schedule":     true,
		"step1_confirm_methodology":  true,
		"step1_confirm_audiocontrol": true,
		"step2_watched":              true,
		"step2_control_answer":       "42",
		"utm_source":                 "vk",
		"utm_campaign":               "spring",
		"quiz_answers": map[string]any{
			"q1": "a",
			"q2": 3.0,
			"q3": nil,
		},
		"status": "Approved",
		"id":     "attacker-chosen",
	}

	app := MapPublicPayload(payload, "Татьяна")

	if app.FullName != "Иван Петров" {
		t.Fatalf("full name not trimmed: %q", app.FullName)
	}
	if app.Phone != "+7 (900) 123-45-67" {
		t.Fatalf("phone not trimmed: %q", app.Phone)
	}
	if app.NormalizedPhone != "79001234567" {
		t.Fatalf("normalized phone: %q", app.NormalizedPhone)
	}
	if app.CreatedAt != "2024-05-01T10:00:00.000Z" {
		t.Fatalf("created_at: %q", app.CreatedAt)
	}
	if !app.Step1Confirmed {
		t.Fatalf("step1_confirmed should be true when all three flags are set")
	}
	if !app.ConsentPD || !app.ConsentContact {
		t.Fatalf("consents should coerce truthy: pd=%v contact=%v", app.ConsentPD, app.ConsentContact)
	}
	if app.QuizAnswers["q1"] != "a" || app.QuizAnswers["q2"] != "3" || app.QuizAnswers["q3"] != "" {
		t.Fatalf("quiz answers coercion: %v", app.QuizAnswers)
	}
	if app.Status != models.StatusNew {
		t.Fatalf("status must be forced to New, got %q", app.Status)
	}
	if app.ID == "attacker-chosen" || app.ID == "" {
		t.Fatalf("id must be server-assigned, got %q", app.ID)
	}
	if app.AssignedTo != "Татьяна" {
		t.Fatalf("assigned_to: %q", app.AssignedTo)
	}
	if app.Duplicate || app.DuplicateOf != nil {
		t.Fatalf("duplicate flags must start unset")
	}
}

func TestMapPublicPayloadDefaults(t *testing.T) {
	app := MapPublicPayload(map[string]any{}, "Татьяна")

	if app.FullName != "" || app.Phone != "" || app.Email != "" || app.City != "" {
		t.Fatalf("missing strings must map to empty: %+v", app)
	}
	if app.Step1Confirmed || app.Step2VideoWatched || app.Age18Confirmed {
		t.Fatalf("missing booleans must map to false")
	}
	if app.QuizAnswers == nil || len(app.QuizAnswers) != 0 {
		t.Fatalf("quiz answers must default to empty map, got %v", app.QuizAnswers)
	}
	if app.Tags == nil || len(app.Tags) != 0 {
		t.Fatalf("tags must default to empty list, got %v", app.Tags)
	}
	if app.ContactAttempts != 0 {
		t.Fatalf("contact_attempts must start at zero")
	}
	if app.CreatedAt == "" || app.UpdatedAt == "" {
		t.Fatalf("timestamps must be server-set")
	}
}

func TestMapPublicPayloadBadTimestampFallsBackToNow(t *testing.T) {
	app := MapPublicPayload(map[string]any{"timestamp": "not-a-date"}, "")
	if _, ok := parseTimestamp(app.CreatedAt); !ok {
		t.Fatalf("created_at fallback is not a valid timestamp: %q", app.CreatedAt)
	}
	if !strings.HasSuffix(app.CreatedAt, "Z") {
		t.Fatalf("created_at must be UTC: %q", app.CreatedAt)
	}
}

func TestMapPublicPayloadNonStringFields(t *testing.T) {
	payload := map[string]any{
		"fullName":     42.0,
		"phone":        map[string]any{"nested": true},
		"quiz_answers": "not an object",
	}
	app := MapPublicPayload(payload, "")
	if app.FullName != "" || app.Phone != "" {
		t.Fatalf("non-string fields must become empty: name=%q phone=%q", app.FullName, app.Phone)
	}
	if len(app.QuizAnswers) != 0 {
		t.Fatalf("non-object quiz answers must become empty map")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+7 (900) 123-45-67": "79001234567",
		"abc":                "",
		"":                   "",
		"8 800 555 35 35":    "88005553535",
	}
	for input, want := range cases {
		if got := NormalizePhone(input); got != want {
			t.Fatalf("NormalizePhone(%q): want=%q got=%q", input, want, got)
		}
	}
}

func TestSanitizeBoolTruthiness(t *testing.T) {
	truthy := []any{true, "false", " ", 1.0, -1.0, []any{}, map[string]any{}}
	for _, v := range truthy {
		if !sanitizeBool(v) {
			t.Fatalf("expected %v (%T) to be truthy", v, v)
		}
	}
	falsy := []any{nil, false, "", 0.0}
	for _, v := range falsy {
		if sanitizeBool(v) {
			t.Fatalf("expected %v (%T) to be falsy", v, v)
		}
	}
}
