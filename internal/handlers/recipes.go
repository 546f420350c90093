package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/service"
)

// @Summary      List recipes
// @Tags         recipes
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, recipes"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/recipes [get]
// @Security     BearerAuth
func (h *Handler) listRecipes(c *gin.Context) {
	recipes, err := h.services.Recipes.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load recipes", "recipes_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(recipes), "recipes": recipes})
}

// @Summary      Get recipe
// @Tags         recipes
// @Produce      json
// @Param        id   path      string  true  "Recipe ID"
// @Success      200  {object}  models.Recipe
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/recipes/{id} [get]
// @Security     BearerAuth
func (h *Handler) getRecipe(c *gin.Context) {
	id := c.Param("id")
	r, err := h.services.Recipes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load recipe", "recipe_get_failed", err, "recipe_id", id)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Create recipe
// @Description  Missing recipe and step IDs are generated
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        body  body      models.Recipe  true  "Recipe"
// @Success      201   {object}  models.Recipe
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/recipes [post]
// @Security     BearerAuth
func (h *Handler) createRecipe(c *gin.Context) {
	var in models.Recipe
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}
	r, err := h.services.Recipes.Create(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRecipe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to save recipe", "recipe_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// @Summary      Delete recipe
// @Tags         recipes
// @Param        id   path  string  true  "Recipe ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/recipes/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Recipes.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to delete recipe", "recipe_delete_failed", err, "recipe_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
