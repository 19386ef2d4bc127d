package export

import (
	"encoding/json"
	"strconv"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
)

// Columns fixes the order of the tabular form shared by the CSV export and
// the webhook mirror. The spreadsheet on the other side depends on it.
var Columns = []string{
	"ID",
	"Timestamp",
	"FullName",
	"Phone",
	"Email",
	"City",
	"Age18Confirmed",
	"Step1Confirmed",
	"Step2Watched",
	"Step2ControlAnswer",
	"QuizAnswers",
	"Status",
	"AssignedTo",
	"Notes",
	"UTM_Source",
	"UTM_Campaign",
	"UTM_Content",
	"UTM_Term",
	"LastContactAt",
	"ContactAttempts",
	"RejectReason",
	"InterviewAt",
	"Duplicate",
}

func boolToRu(value bool) string {
	if value {
		return "Да"
	}
	return "Нет"
}

func orEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// TabularRow flattens one record into the fixed column set, booleans
// rendered as localized yes/no and quiz answers serialized as JSON text.
func TabularRow(application models.Application) map[string]string {
	answers := application.QuizAnswers
	if answers == nil {
		answers = map[string]string{}
	}
	quizJSON, err := json.Marshal(answers)
	if err != nil {
		quizJSON = []byte("{}")
	}

	return map[string]string{
		"ID":                 application.ID,
		"Timestamp":          application.CreatedAt,
		"FullName":           application.FullName,
		"Phone":              application.Phone,
		"Email":              application.Email,
		"City":               application.City,
		"Age18Confirmed":     boolToRu(application.Age18Confirmed),
		"Step1Confirmed":     boolToRu(application.Step1Confirmed),
		"Step2Watched":       boolToRu(application.Step2VideoWatched),
		"Step2ControlAnswer": application.Step2ControlAnswer,
		"QuizAnswers":        string(quizJSON),
		"Status":             application.Status,
		"AssignedTo":         application.AssignedTo,
		"Notes":              application.Notes,
		"UTM_Source":         application.SourceUTM.UTMSource,
		"UTM_Campaign":       application.SourceUTM.UTMCampaign,
		"UTM_Content":        application.SourceUTM.UTMContent,
		"UTM_Term":           application.SourceUTM.UTMTerm,
		"LastContactAt":      orEmpty(application.LastContactAt),
		"ContactAttempts":    strconv.Itoa(application.ContactAttempts),
		"RejectReason":       orEmpty(application.RejectReason),
		"InterviewAt":        orEmpty(application.InterviewAt),
		"Duplicate":          boolToRu(application.Duplicate),
	}
}
