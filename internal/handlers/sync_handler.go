package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/zeus-03/pennytrail/internal/errors"

	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/repositories"
	"github.com/zeus-03/pennytrail/internal/services"

	"github.com/labstack/echo/v4"
)

// SyncHandler handles email sync endpoints. Sync is only meaningful for
// connected accounts; guest sessions are rejected up front.
type SyncHandler struct {
	syncService services.EmailSyncServiceInterface
}

// NewSyncHandler creates a new email sync handler
func NewSyncHandler(syncService services.EmailSyncServiceInterface) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Sync runs one email sync pass for the authenticated user
// @Summary Sync transactions from email
// @Description Extract transactional emails via the extraction service, classify each transaction and persist the results. Only one sync per user runs at a time.
// @Tags Email Sync
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SyncRequest false "Sync options"
// @Success 200 {object} dto.SyncResponse "Sync outcome"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 403 {object} errors.ErrorResponse "SYNC_005 - Guest sessions cannot sync"
// @Failure 409 {object} errors.ErrorResponse "SYNC_001 - Sync already running"
// @Failure 502 {object} errors.ErrorResponse "SYNC_002 - Extraction service unavailable"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /email/sync [post]
func (h *SyncHandler) Sync(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	if isGuestRequest(c) {
		return SendError(c, apierrors.SyncGuestNotSupported)
	}

	var req dto.SyncRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := h.syncService.Sync(c.Request().Context(), userID, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSyncAlreadyRunning):
			return SendError(c, apierrors.SyncAlreadyRunning)
		case errors.Is(err, services.ErrExtractionFailed):
			return SendError(c, apierrors.SyncExtractorFailed)
		case errors.Is(err, services.ErrCircuitBreakerOpen):
			return SendError(c, apierrors.SystemServiceUnavailable)
		case errors.Is(err, repositories.ErrUserNotFound):
			return SendError(c, apierrors.UserNotFound)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// Status reports the user's sync counters and whether a run is in flight
// @Summary Email sync status
// @Description Return the cumulative sync counters and the in-progress flag for the authenticated user
// @Tags Email Sync
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse "Sync status"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 403 {object} errors.ErrorResponse "SYNC_005 - Guest sessions cannot sync"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /email/sync/status [get]
func (h *SyncHandler) Status(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	if isGuestRequest(c) {
		return SendError(c, apierrors.SyncGuestNotSupported)
	}

	status, err := h.syncService.Status(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, apierrors.UserNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, status)
}
