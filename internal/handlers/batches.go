package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freeze_dryer/internal/service"
)

// ResultNotesRequest records the operator's assessment of a batch.
type ResultNotesRequest struct {
	ResultNotes string `json:"result_notes" example:"Crisp, no chewy centres"`
}

// @Summary      List batches
// @Description  Finished runs, most recent first
// @Tags         batches
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, batches"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/batches [get]
// @Security     BearerAuth
func (h *Handler) listBatches(c *gin.Context) {
	batches, err := h.services.Batches.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load batches", "batches_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(batches), "batches": batches})
}

// @Summary      Get batch
// @Tags         batches
// @Produce      json
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  models.Batch
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/batches/{id} [get]
// @Security     BearerAuth
func (h *Handler) getBatch(c *gin.Context) {
	id := c.Param("id")
	b, err := h.services.Batches.Get(c.Request.Context(), id)
	if err != nil {
		h.batchError(c, "batch_get_failed", id, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary      Set batch result notes
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Batch ID"
// @Param        body  body      ResultNotesRequest  true  "Notes"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/batches/{id} [patch]
// @Security     BearerAuth
func (h *Handler) setBatchResultNotes(c *gin.Context) {
	var req ResultNotesRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.Batches.SetResultNotes(c.Request.Context(), id, req.ResultNotes); err != nil {
		h.batchError(c, "batch_update_failed", id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "id": id})
}

func (h *Handler) batchError(c *gin.Context, logKey, id string, err error) {
	if errors.Is(err, service.ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "failed to access batch", logKey, err, "batch_id", id)
}
