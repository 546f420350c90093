package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/service"
	"freeze_dryer/internal/transport"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK           = "ok"
	statusConnected    = "connected"
	statusDisconnected = "disconnected"
	statusStarted      = "started"
	statusPaused       = "paused"
	statusResumed      = "resumed"
	statusStopped      = "stopped"
	statusSent         = "sent"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// dryerErrorStatus maps device and service errors to HTTP codes.
func dryerErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownConnection),
		errors.Is(err, service.ErrInvalidTrayType),
		errors.Is(err, models.ErrInvalidRecipe):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoDevice),
		errors.Is(err, service.ErrNotConnected),
		errors.Is(err, service.ErrProcessActive):
		return http.StatusConflict
	case errors.Is(err, transport.ErrNoPort),
		errors.Is(err, transport.ErrUnsupported):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// dryerError answers with the mapped status. Only server-side failures are logged as errors.
func (h *Handler) dryerError(c *gin.Context, logKey string, err error) {
	code := dryerErrorStatus(err)
	if code >= http.StatusInternalServerError {
		h.logAndJSONError(c, code, err.Error(), logKey, err)
		return
	}
	if h.log != nil {
		h.log.Infow(logKey, "err", err, "status", code)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// ConnectRequest selects the device to attach.
type ConnectRequest struct {
	// Connection type. Allowed: mock, serial
	Type string `json:"type" binding:"required" example:"mock"`
}

// StartRequest names the recipe to run and the batch details recorded when it finishes.
type StartRequest struct {
	RecipeID string          `json:"recipe_id" binding:"required" example:"rec_default_1"`
	Quantity float64         `json:"quantity,omitempty" example:"1.5"`
	TrayType string          `json:"tray_type,omitempty" example:"Perforated"`
	Notes    string          `json:"notes,omitempty"`
	WashInfo models.WashInfo `json:"wash_info"`
}

// SendRequest carries raw text for the device link.
type SendRequest struct {
	Data string `json:"data" binding:"required" example:"{\"command\":\"status\"}"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Connect device
// @Description  Replaces the active device with a new one of the given type
// @Tags         dryer
// @Accept       json
// @Produce      json
// @Param        body  body      ConnectRequest  true  "Connection type"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/dryer/connect [post]
// @Security     BearerAuth
func (h *Handler) connectDevice(c *gin.Context) {
	var req ConnectRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	kind := models.ConnectionType(req.Type)
	if err := h.services.Dryer.Connect(c.Request.Context(), kind); err != nil {
		h.dryerError(c, "dryer_connect_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusConnected, gin.H{"type": kind})
}

// @Summary      Disconnect device
// @Tags         dryer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/dryer/disconnect [post]
// @Security     BearerAuth
func (h *Handler) disconnectDevice(c *gin.Context) {
	if err := h.services.Dryer.Disconnect(c.Request.Context()); err != nil {
		h.dryerError(c, "dryer_disconnect_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusDisconnected, gin.H{})
}

// @Summary      Start process
// @Description  Runs a stored recipe. The device must be connected and idle.
// @Tags         dryer
// @Accept       json
// @Produce      json
// @Param        body  body      StartRequest  true  "Recipe and batch details"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/dryer/start [post]
// @Security     BearerAuth
func (h *Handler) startProcess(c *gin.Context) {
	var req StartRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	err := h.services.Dryer.Start(c.Request.Context(), service.StartRequest{
		RecipeID: req.RecipeID,
		Quantity: req.Quantity,
		TrayType: req.TrayType,
		Notes:    req.Notes,
		WashInfo: req.WashInfo,
	})
	if err != nil {
		h.dryerError(c, "dryer_start_failed", err)
		return
	}
	if h.log != nil {
		h.log.Infow("process_started", "recipe_id", req.RecipeID, "user_id", operatorID(c))
	}
	h.respondWithStatusAndState(c, statusStarted, gin.H{"recipe_id": req.RecipeID})
}

// @Summary      Pause process
// @Tags         dryer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/dryer/pause [post]
// @Security     BearerAuth
func (h *Handler) pauseProcess(c *gin.Context) {
	h.control(c, statusPaused, "dryer_pause_failed", h.services.Dryer.Pause)
}

// @Summary      Resume process
// @Tags         dryer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/dryer/resume [post]
// @Security     BearerAuth
func (h *Handler) resumeProcess(c *gin.Context) {
	h.control(c, statusResumed, "dryer_resume_failed", h.services.Dryer.Resume)
}

// @Summary      Stop process
// @Tags         dryer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/dryer/stop [post]
// @Security     BearerAuth
func (h *Handler) stopProcess(c *gin.Context) {
	h.control(c, statusStopped, "dryer_stop_failed", h.services.Dryer.Stop)
}

func (h *Handler) control(c *gin.Context, status, logKey string, op func(context.Context) error) {
	if err := op(c.Request.Context()); err != nil {
		h.dryerError(c, logKey, err)
		return
	}
	h.respondWithStatusAndState(c, status, gin.H{})
}

// @Summary      Send raw data
// @Tags         dryer
// @Accept       json
// @Produce      json
// @Param        body  body      SendRequest  true  "Raw text"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/dryer/send [post]
// @Security     BearerAuth
func (h *Handler) sendData(c *gin.Context) {
	var req SendRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Dryer.Send(c.Request.Context(), req.Data); err != nil {
		h.dryerError(c, "dryer_send_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSent, "bytes": len(req.Data)})
}

// @Summary      Get dryer state
// @Description  Live status when a device is attached, otherwise the last persisted one
// @Tags         dryer
// @Produce      json
// @Success      200  {object}  service.StateView
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/dryer/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "dryer_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
