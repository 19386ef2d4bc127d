package models

// Application is one candidate's wizard submission plus its triage state.
// The whole collection is persisted as a single JSON document, so every
// field carries the wire name used by the admin UI and the export row.
type Application struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	SourceUTM SourceUTM `json:"source_utm"`

	Step1Confirmed     bool   `json:"step1_confirmed"`
	Step2VideoWatched  bool   `json:"step2_video_watched"`
	Step2ControlAnswer string `json:"step2_control_answer"`

	QuizScore   *int              `json:"quiz_score"`
	QuizAnswers map[string]string `json:"quiz_answers"`

	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	NormalizedPhone string `json:"normalized_phone"`
	Email           string `json:"email"`
	City            string `json:"city"`
	Comment         string `json:"comment"`

	Age18Confirmed bool `json:"age_18_confirmed"`
	ConsentPD      bool `json:"consent_pd"`
	ConsentContact bool `json:"consent_contact"`

	Status          string   `json:"status"`
	AssignedTo      string   `json:"assigned_to"`
	LastContactAt   *string  `json:"last_contact_at"`
	LastContactType *string  `json:"last_contact_type"`
	ContactAttempts int      `json:"contact_attempts"`
	Notes           string   `json:"notes"`
	Tags            []string `json:"tags"`

	RejectReason      *string `json:"reject_reason"`
	ReserveFollowupAt *string `json:"reserve_followup_at"`
	InterviewAt       *string `json:"interview_at"`

	Duplicate   bool    `json:"duplicate"`
	DuplicateOf *string `json:"duplicate_of"`
}

// SourceUTM carries the acquisition attribution exactly as submitted.
type SourceUTM struct {
	UTMSource   string `json:"utm_source"`
	UTMCampaign string `json:"utm_campaign"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
}

// Counters is the four-key status summary shown above the admin table.
type Counters struct {
	New       int `json:"New"`
	Contacted int `json:"Contacted"`
	Approved  int `json:"Approved"`
	Rejected  int `json:"Rejected"`
}

const (
	StatusNew                = "New"
	StatusInReview           = "In review"
	StatusContacted          = "Contacted"
	StatusNoAnswer           = "No answer"
	StatusInterviewScheduled = "Interview scheduled"
	StatusInterviewPassed    = "Interview passed"
	StatusTraining           = "Training"
	StatusExamScheduled      = "Exam scheduled"
	StatusApproved           = "Approved"
	StatusRejected           = "Rejected"
	StatusReserve            = "Reserve"
)

// ApplicationStatuses lists every valid status in pipeline order.
var ApplicationStatuses = []string{
	StatusNew,
	StatusInReview,
	StatusContacted,
	StatusNoAnswer,
	StatusInterviewScheduled,
	StatusInterviewPassed,
	StatusTraining,
	StatusExamScheduled,
	StatusApproved,
	StatusRejected,
	StatusReserve,
}

// RejectReasons is the fixed set offered by the admin UI.
var RejectReasons = []string{
	"No motivation",
	"Low communication skills",
	"No availability",
	"No required device",
	"Age under 18",
	"Other",
}

// ValidStatus reports whether s is one of the eleven pipeline statuses.
func ValidStatus(s string) bool {
	for _, status := range ApplicationStatuses {
		if status == s {
			return true
		}
	}
	return false
}
