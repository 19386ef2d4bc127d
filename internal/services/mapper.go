package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"github.com/google/uuid"
)

// isoMillis matches the timestamp format the admin UI and the export sheet
// expect: UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func nowISO() string {
	return time.Now().UTC().Format(isoMillis)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sanitizeString trims string input; anything else becomes "".
func sanitizeString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// sanitizeBool coerces by truthiness: nil, false, zero and the empty
// string are false, everything else is true.
func sanitizeBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	default:
		return true
	}
}

func coerceToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func sanitizeQuizAnswers(value any) map[string]string {
	raw, ok := value.(map[string]any)
	if !ok {
		return map[string]string{}
	}
	answers := make(map[string]string, len(raw))
	for key, answer := range raw {
		answers[key] = coerceToString(answer)
	}
	return answers
}

// MapPublicPayload turns an untrusted wizard submission into a canonical
// application record. It is total: any payload shape yields a record, and
// required-field checks belong to the HTTP boundary, not here. Identity,
// triage state and duplicate flags are always server-assigned.
func MapPublicPayload(payload map[string]any, defaultAssignee string) models.Application {
	now := nowISO()

	createdAt := now
	if t, ok := parseTimestamp(sanitizeString(payload["timestamp"])); ok {
		createdAt = t.UTC().Format(isoMillis)
	}

	phone := sanitizeString(payload["phone"])

	return models.Application{
		ID:        uuid.NewString(),
		CreatedAt: createdAt,
		UpdatedAt: now,
		SourceUTM: models.SourceUTM{
			UTMSource:   sanitizeString(payload["utm_source"]),
			UTMCampaign: sanitizeString(payload["utm_campaign"]),
			UTMContent:  sanitizeString(payload["utm_content"]),
			UTMTerm:     sanitizeString(payload["utm_term"]),
		},
		Step1Confirmed: sanitizeBool(payload["step1_confirm_schedule"]) &&
			sanitizeBool(payload["step1_confirm_methodology"]) &&
			sanitizeBool(payload["step1_confirm_audiocontrol"]),
		Step2VideoWatched:  sanitizeBool(payload["step2_watched"]),
		Step2ControlAnswer: sanitizeString(payload["step2_control_answer"]),
		QuizScore:          nil,
		QuizAnswers:        sanitizeQuizAnswers(payload["quiz_answers"]),
		FullName:           sanitizeString(payload["fullName"]),
		Phone:              phone,
		NormalizedPhone:    NormalizePhone(phone),
		Email:              sanitizeString(payload["email"]),
		City:               sanitizeString(payload["city"]),
		Age18Confirmed:     sanitizeBool(payload["age18Confirmed"]),
		Comment:            sanitizeString(payload["comment"]),
		Status:             models.StatusNew,
		AssignedTo:         defaultAssignee,
		ContactAttempts:    0,
		Notes:              "",
		Tags:               []string{},
		ConsentPD:          sanitizeBool(payload["consentData"]),
		ConsentContact:     sanitizeBool(payload["consentContact"]),
	}
}
