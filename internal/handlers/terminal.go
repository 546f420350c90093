package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Terminal tail
// @Description  Recent raw text received from the device link
// @Tags         dryer
// @Produce      json
// @Success      200  {object}  map[string]string  "data"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/terminal [get]
// @Security     BearerAuth
func (h *Handler) getTerminal(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.services.Terminal.Tail()})
}
