package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/store"
	"go.uber.org/zap"
)

// ErrNotFound signals an unknown application id. Distinct from validation
// failures: callers map it to 404.
var ErrNotFound = store.ErrNotFound

// allowedPatchFields is the only surface a client patch can touch.
// Identity, derived and computed fields are deliberately absent.
var allowedPatchFields = map[string]bool{
	"status":              true,
	"assigned_to":         true,
	"last_contact_at":     true,
	"contact_attempts":    true,
	"notes":               true,
	"tags":                true,
	"reject_reason":       true,
	"reserve_followup_at": true,
	"interview_at":        true,
}

// contactableStatuses are the statuses a contact attempt moves to
// Contacted; any other status stays put.
var contactableStatuses = []string{
	models.StatusNew,
	models.StatusInReview,
	models.StatusNoAnswer,
}

// ApplicationService owns the record lifecycle. Every write goes through
// the store's Mutate, which is the sole serialization point.
type ApplicationService struct {
	store           store.Store
	defaultAssignee string
	log             *zap.SugaredLogger
}

func NewApplicationService(s store.Store, defaultAssignee string, log *zap.SugaredLogger) *ApplicationService {
	return &ApplicationService{store: s, defaultAssignee: defaultAssignee, log: log}
}

// Map turns a raw public payload into a canonical record using the
// configured default assignee.
func (s *ApplicationService) Map(payload map[string]any) models.Application {
	return MapPublicPayload(payload, s.defaultAssignee)
}

// Create appends the record, marking it a duplicate if an existing record
// already carries the same non-empty normalized phone. The flags are
// computed once here and never recomputed.
func (s *ApplicationService) Create(ctx context.Context, application models.Application) (models.Application, error) {
	err := s.store.Mutate(ctx, func(c *store.Collection) error {
		for _, existing := range c.Applications {
			if existing.NormalizedPhone != "" && existing.NormalizedPhone == application.NormalizedPhone {
				id := existing.ID
				application.Duplicate = true
				application.DuplicateOf = &id
				break
			}
		}
		c.Applications = append(c.Applications, application)
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}
	s.log.Infow("application created", "id", application.ID, "duplicate", application.Duplicate)
	return application, nil
}

// List returns the filtered, newest-first records plus the counters
// computed over that same filtered set.
func (s *ApplicationService) List(ctx context.Context, filters Filters) ([]models.Application, models.Counters, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, models.Counters{}, err
	}
	filtered := FilterApplications(all, filters)
	return filtered, BuildCounters(filtered), nil
}

// Get returns the record with the given id or ErrNotFound.
func (s *ApplicationService) Get(ctx context.Context, id string) (models.Application, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return models.Application{}, err
	}
	for _, item := range all {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Application{}, ErrNotFound
}

// Update applies an allow-listed partial update. Unknown keys, invalid
// statuses and malformed values are silently ignored so a sloppy client
// can never corrupt a record.
func (s *ApplicationService) Update(ctx context.Context, id string, patch map[string]any) (models.Application, error) {
	var updated models.Application
	err := s.store.Mutate(ctx, func(c *store.Collection) error {
		index := indexByID(c.Applications, id)
		if index < 0 {
			return ErrNotFound
		}

		next := c.Applications[index]
		for key, value := range patch {
			if !allowedPatchFields[key] {
				continue
			}
			applyPatchField(&next, key, value)
		}
		next.UpdatedAt = nowISO()

		c.Applications[index] = next
		updated = next
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}
	return updated, nil
}

func applyPatchField(next *models.Application, key string, value any) {
	switch key {
	case "status":
		if s, ok := value.(string); ok && models.ValidStatus(s) {
			next.Status = s
		}
	case "contact_attempts":
		if n, ok := toNumber(value); ok && n >= 0 {
			next.ContactAttempts = int(math.Floor(n))
		}
	case "tags":
		if raw, ok := value.([]any); ok {
			tags := make([]string, 0, len(raw))
			for _, item := range raw {
				if tag := sanitizeString(item); tag != "" {
					tags = append(tags, tag)
				}
			}
			next.Tags = tags
		}
	case "last_contact_at":
		next.LastContactAt = optionalString(value)
	case "reserve_followup_at":
		next.ReserveFollowupAt = optionalString(value)
	case "interview_at":
		next.InterviewAt = optionalString(value)
	case "reject_reason":
		if sanitizeBool(value) {
			reason := sanitizeString(value)
			next.RejectReason = &reason
		} else {
			next.RejectReason = nil
		}
	case "assigned_to":
		next.AssignedTo = sanitizeString(value)
	case "notes":
		next.Notes = sanitizeString(value)
	}
}

// MarkContact records an outreach touch: the attempt counter always goes
// up, and the status moves to Contacted only from the early pipeline
// stages. Later stages never regress.
func (s *ApplicationService) MarkContact(ctx context.Context, id, action string) (models.Application, error) {
	var updated models.Application
	err := s.store.Mutate(ctx, func(c *store.Collection) error {
		index := indexByID(c.Applications, id)
		if index < 0 {
			return ErrNotFound
		}

		now := nowISO()
		next := c.Applications[index]
		next.ContactAttempts++
		next.LastContactAt = &now
		next.LastContactType = &action
		if containsString(contactableStatuses, next.Status) {
			next.Status = models.StatusContacted
		}
		next.UpdatedAt = now

		c.Applications[index] = next
		updated = next
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}
	return updated, nil
}

func indexByID(applications []models.Application, id string) int {
	for i, item := range applications {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// optionalString clears on falsy input, otherwise stores the value as-is
// converted to a string. No date validation happens at this layer.
func optionalString(value any) *string {
	if !sanitizeBool(value) {
		return nil
	}
	s := coerceToString(value)
	return &s
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
