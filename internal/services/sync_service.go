package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/export"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"go.uber.org/zap"
)

// SyncResult is the side-channel status of a mirror attempt. It never
// affects whether the local mutation succeeded.
type SyncResult struct {
	Synced bool   `json:"synced"`
	Reason string `json:"reason,omitempty"`
}

// SyncService mirrors records to the external spreadsheet webhook,
// best-effort and fire-and-forget.
type SyncService struct {
	webhookURL  string
	workbookURL string
	client      *http.Client
	log         *zap.SugaredLogger
}

func NewSyncService(webhookURL, workbookURL string, log *zap.SugaredLogger) *SyncService {
	return &SyncService{
		webhookURL:  webhookURL,
		workbookURL: workbookURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

// WorkbookURL is the human-facing spreadsheet link shown in the admin UI.
func (s *SyncService) WorkbookURL() string {
	return s.workbookURL
}

type syncPayload struct {
	Action        string             `json:"action"`
	Timestamp     string             `json:"timestamp"`
	ApplicationID string             `json:"application_id"`
	Row           map[string]string  `json:"row"`
	Application   models.Application `json:"application"`
}

// Sync posts the record and its tabular row to the webhook. Failures are
// logged and reported in the result, never returned as errors.
func (s *SyncService) Sync(application models.Application, action string) SyncResult {
	if s.webhookURL == "" {
		s.log.Warnw("webhook url is empty, sync skipped")
		return SyncResult{Synced: false, Reason: "missing_webhook_url"}
	}

	payload := syncPayload{
		Action:        action,
		Timestamp:     nowISO(),
		ApplicationID: application.ID,
		Row:           export.TabularRow(application),
		Application:   application,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Errorw("webhook payload encode failed", "error", err)
		return SyncResult{Synced: false, Reason: "network_error"}
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.Errorw("webhook request failed", "error", err)
		return SyncResult{Synced: false, Reason: "network_error"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.Errorw("webhook returned error", "status", resp.StatusCode, "body", string(responseBody))
		return SyncResult{Synced: false, Reason: fmt.Sprintf("http_%d", resp.StatusCode)}
	}

	return SyncResult{Synced: true}
}
