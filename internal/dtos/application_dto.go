package dtos

import (
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserInfo struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type ContactRequest struct {
	Action string `json:"action"`
}

type CreateApplicationResponse struct {
	ID          string              `json:"id"`
	Duplicate   bool                `json:"duplicate"`
	DuplicateOf *string             `json:"duplicate_of"`
	Excel       services.SyncResult `json:"excel"`
}

type ListApplicationsResponse struct {
	Items    []models.Application `json:"items"`
	Total    int                  `json:"total"`
	Counters models.Counters      `json:"counters"`
}

type UpdateApplicationResponse struct {
	Item  models.Application  `json:"item"`
	Excel services.SyncResult `json:"excel"`
}

type MetaResponse struct {
	Statuses         []string `json:"statuses"`
	RejectReasons    []string `json:"reject_reasons"`
	DefaultAssignee  string   `json:"default_assignee"`
	ExcelWorkbookURL string   `json:"excel_workbook_url"`
}
