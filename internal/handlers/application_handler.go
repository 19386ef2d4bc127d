package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/dtos"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/export"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/services"
	"go.uber.org/zap"
)

// ApplicationHandler exposes the public submission endpoint and the admin
// triage API.
type ApplicationHandler struct {
	Applications    *services.ApplicationService
	Sync            *services.SyncService
	DefaultAssignee string
	Log             *zap.SugaredLogger
}

func NewApplicationHandler(applications *services.ApplicationService, sync *services.SyncService, defaultAssignee string, log *zap.SugaredLogger) *ApplicationHandler {
	return &ApplicationHandler{
		Applications:    applications,
		Sync:            sync,
		DefaultAssignee: defaultAssignee,
		Log:             log,
	}
}

// HealthCheck is the GET /api/health endpoint.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// Create is the POST /api/public/applications endpoint. The payload is an
// arbitrary object: mapping never fails, only the required-field check can
// reject it.
func (h *ApplicationHandler) Create(c *gin.Context) {
	payload := map[string]any{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	mapped := h.Applications.Map(payload)
	if mapped.FullName == "" || mapped.Phone == "" || mapped.City == "" || !mapped.Age18Confirmed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Поля fullName, phone, city и подтверждение 18+ обязательны.",
		})
		return
	}

	created, err := h.Applications.Create(c.Request.Context(), mapped)
	if err != nil {
		h.Log.Errorw("create application failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить заявку."})
		return
	}

	excel := h.Sync.Sync(created, "create")
	c.JSON(http.StatusCreated, dtos.CreateApplicationResponse{
		ID:          created.ID,
		Duplicate:   created.Duplicate,
		DuplicateOf: created.DuplicateOf,
		Excel:       excel,
	})
}

// Meta is the GET /api/admin/meta endpoint.
func (h *ApplicationHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, dtos.MetaResponse{
		Statuses:         models.ApplicationStatuses,
		RejectReasons:    models.RejectReasons,
		DefaultAssignee:  h.DefaultAssignee,
		ExcelWorkbookURL: h.Sync.WorkbookURL(),
	})
}

func filtersFromQuery(c *gin.Context) services.Filters {
	return services.Filters{
		Status:   c.Query("status"),
		City:     c.Query("city"),
		Source:   c.Query("source"),
		Query:    c.Query("q"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
}

// List is the GET /api/admin/applications endpoint. Counters are computed
// over the filtered set, not the global one.
func (h *ApplicationHandler) List(c *gin.Context) {
	items, counters, err := h.Applications.List(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		h.Log.Errorw("list applications failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить заявки."})
		return
	}
	c.JSON(http.StatusOK, dtos.ListApplicationsResponse{
		Items:    items,
		Total:    len(items),
		Counters: counters,
	})
}

// Get is the GET /api/admin/applications/:id endpoint.
func (h *ApplicationHandler) Get(c *gin.Context) {
	item, err := h.Applications.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена."})
		return
	}
	if err != nil {
		h.Log.Errorw("get application failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить заявку."})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update is the PATCH /api/admin/applications/:id endpoint.
func (h *ApplicationHandler) Update(c *gin.Context) {
	patch := map[string]any{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	updated, err := h.Applications.Update(c.Request.Context(), c.Param("id"), patch)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена."})
		return
	}
	if err != nil {
		h.Log.Errorw("update application failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить заявку."})
		return
	}

	excel := h.Sync.Sync(updated, "update")
	c.JSON(http.StatusOK, dtos.UpdateApplicationResponse{Item: updated, Excel: excel})
}

// Contact is the POST /api/admin/applications/:id/contact endpoint. Any
// action other than "messaged" falls back to "called".
func (h *ApplicationHandler) Contact(c *gin.Context) {
	var req dtos.ContactRequest
	_ = c.ShouldBindJSON(&req)

	action := "called"
	if req.Action == "messaged" {
		action = "messaged"
	}

	item, err := h.Applications.MarkContact(c.Request.Context(), c.Param("id"), action)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена."})
		return
	}
	if err != nil {
		h.Log.Errorw("contact attempt failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить контакт."})
		return
	}

	excel := h.Sync.Sync(item, "update")
	c.JSON(http.StatusOK, dtos.UpdateApplicationResponse{Item: item, Excel: excel})
}

// ExportCSV is the GET /api/admin/export.csv endpoint: the filtered set as
// a BOM-prefixed CSV attachment.
func (h *ApplicationHandler) ExportCSV(c *gin.Context) {
	items, _, err := h.Applications.List(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		h.Log.Errorw("export csv failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сформировать CSV."})
		return
	}

	csvBody, err := export.ToCSV(items)
	if err != nil {
		h.Log.Errorw("export csv failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сформировать CSV."})
		return
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", append([]byte{0xEF, 0xBB, 0xBF}, csvBody...))
}
