// Package handler provides the HTTP handlers for the catalog API.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/okhowto/video-catalog-go/internal/catalog"
	"github.com/okhowto/video-catalog-go/internal/service"
	"github.com/okhowto/video-catalog-go/pkg/logger"
)

// Error codes returned in the error envelope.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeBadJSON          = "BAD_JSON"
	CodeMissingID        = "MISSING_ID"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeBlobsNotEnabled  = "BLOBS_NOT_ENABLED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the error envelope for every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SaveResponse is the success envelope for save requests.
type SaveResponse struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode"`
	Count int    `json:"count"`
	ID    string `json:"id,omitempty"`
}

// DeleteResponse is the success envelope for delete requests; it carries the
// removed record.
type DeleteResponse struct {
	OK      bool           `json:"ok"`
	Deleted *catalog.Video `json:"deleted"`
}

// DeleteRequest identifies the record to remove.
type DeleteRequest struct {
	ID string `json:"id"`
}

// VideoHandler serves the catalog endpoints.
type VideoHandler struct {
	store  *catalog.Store
	events *service.CatalogPublisher
}

// NewVideoHandler creates a VideoHandler. The publisher may be nil when
// event publishing is not configured.
func NewVideoHandler(store *catalog.Store, events *service.CatalogPublisher) *VideoHandler {
	return &VideoHandler{
		store:  store,
		events: events,
	}
}

// Save handles a single upsert (object payload) or a bulk replace (array
// payload) of the catalog document.
func (h *VideoHandler) Save(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		sendError(c, http.StatusBadRequest, CodeBadJSON, "failed to read request body", nil)
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		sendError(c, http.StatusBadRequest, CodeBadJSON, "request body must be a JSON object or array", nil)
		return
	}

	var result *catalog.WriteResult

	if trimmed[0] == '[' {
		var payloads []map[string]any
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			sendError(c, http.StatusBadRequest, CodeBadJSON, "request body is not a valid JSON array", nil)
			return
		}
		result, err = h.store.ReplaceAll(c.Request.Context(), payloads)
	} else {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			sendError(c, http.StatusBadRequest, CodeBadJSON, "request body is not a valid JSON object", nil)
			return
		}
		result, err = h.store.Upsert(c.Request.Context(), payload)
	}

	if err != nil {
		h.handleError(c, err)
		return
	}

	h.publish(c, result)

	c.JSON(http.StatusOK, SaveResponse{
		OK:    true,
		Mode:  result.Mode,
		Count: result.Count,
		ID:    result.VimeoID,
	})
}

// Delete removes one record by its exact id.
func (h *VideoHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		sendError(c, http.StatusBadRequest, CodeBadJSON, "request body is not a valid JSON object", nil)
		return
	}

	if req.ID == "" {
		sendError(c, http.StatusBadRequest, CodeMissingID, "id is required", nil)
		return
	}

	removed, err := h.store.Delete(c.Request.Context(), req.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.events.Publish(c.Request.Context(), &service.CatalogEvent{
		Type:     service.EventVideoDeleted,
		VimeoID:  removed.VimeoID,
		RecordID: removed.ID,
	}); err != nil {
		logger.Log.Warn("failed to publish catalog event", zap.Error(err))
	}

	c.JSON(http.StatusOK, DeleteResponse{OK: true, Deleted: removed})
}

// Feed serves the public listing. It answers 200 with a bare JSON array no
// matter what; internal failures degrade to an empty array inside the store.
func (h *VideoHandler) Feed(c *gin.Context) {
	videos := h.store.List(c.Request.Context())

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, videos)
}

// List is the authenticated raw listing for admin tooling; unlike Feed it
// carries a count so tooling can diff the catalog.
func (h *VideoHandler) List(c *gin.Context) {
	videos := h.store.List(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"items": videos,
		"count": len(videos),
	})
}

func (h *VideoHandler) publish(c *gin.Context, result *catalog.WriteResult) {
	eventType := service.EventVideoUpserted
	if result.Mode == "replaceAll" {
		eventType = service.EventCatalogReplaced
	}

	if err := h.events.Publish(c.Request.Context(), &service.CatalogEvent{
		Type:    eventType,
		VimeoID: result.VimeoID,
		Count:   result.Count,
	}); err != nil {
		logger.Log.Warn("failed to publish catalog event", zap.Error(err))
	}
}

func (h *VideoHandler) handleError(c *gin.Context, err error) {
	switch {
	case catalog.IsValidation(err):
		sendError(c, http.StatusUnprocessableEntity, CodeValidation, err.Error(), validationDetails(err))
	case catalog.IsNotFound(err):
		sendError(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case catalog.IsNotEnabled(err):
		sendError(c, http.StatusServiceUnavailable, CodeBlobsNotEnabled, "catalog blob store is not provisioned", nil)
	case catalog.IsConflict(err):
		logger.Log.Warn("catalog write conflict exhausted retries", zap.Error(err))
		sendError(c, http.StatusConflict, CodeConflict, "catalog was modified concurrently, retry the request", nil)
	default:
		logger.Log.Error("catalog operation failed", zap.Error(err))
		sendError(c, http.StatusInternalServerError, CodeInternal, "an unexpected error occurred", nil)
	}
}

// validationDetails surfaces the failing element's position when a bulk
// payload was rejected. Single-record failures carry no details.
func validationDetails(err error) any {
	var itemErr *catalog.ItemError
	if errors.As(err, &itemErr) {
		return gin.H{"item": itemErr.Index}
	}
	return nil
}

func sendError(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// MethodNotAllowed answers requests hitting a known route with the wrong
// method.
func MethodNotAllowed(c *gin.Context) {
	sendError(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil)
}

// NotFound answers requests for unknown routes.
func NotFound(c *gin.Context) {
	sendError(c, http.StatusNotFound, CodeNotFound, "not found", nil)
}
