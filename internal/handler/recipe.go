package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipeshare/internal/middleware"
	"recipeshare/internal/models"
	"recipeshare/internal/service"
)

type RecipeHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	AddComment(c *gin.Context)
	Comments(c *gin.Context)
	DeleteComment(c *gin.Context)
}

type recipeHandler struct {
	recipeService service.RecipeService
	logger        *zap.Logger
}

func NewRecipeHandler(recipeService service.RecipeService, logger *zap.Logger) RecipeHandler {
	return &recipeHandler{recipeService: recipeService, logger: logger}
}

type RecipeRequest struct {
	Title        string   `json:"title" binding:"required"`
	Ingredients  []string `json:"ingredients" binding:"required"`
	Instructions string   `json:"instructions" binding:"required"`
	Categories   []string `json:"categories"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (r RecipeRequest) toModel() *models.Recipe {
	return &models.Recipe{
		Title:        r.Title,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Categories:   r.Categories,
	}
}

// List handles GET /recipes (public).
func (h *recipeHandler) List(c *gin.Context) {
	recipes, err := h.recipeService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recipes"})
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// Get handles GET /recipes/:recipe_id (public).
func (h *recipeHandler) Get(c *gin.Context) {
	recipe, err := h.recipeService.Get(c.Request.Context(), c.Param("recipe_id"))
	if err != nil {
		h.respondError(c, err, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Create handles POST /recipes.
func (h *recipeHandler) Create(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.CurrentIdentity(c), req.toModel())
	if err != nil {
		h.logger.Error("Failed to create recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// Update handles PUT /recipes/:recipe_id.
func (h *recipeHandler) Update(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(),
		middleware.CurrentIdentity(c), c.Param("recipe_id"), req.toModel())
	if err != nil {
		h.respondError(c, err, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Delete handles DELETE /recipes/:recipe_id.
func (h *recipeHandler) Delete(c *gin.Context) {
	err := h.recipeService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("recipe_id"))
	if err != nil {
		h.respondError(c, err, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// AddComment handles POST /recipes/comments/:recipe_id.
func (h *recipeHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.AddComment(c.Request.Context(),
		middleware.CurrentIdentity(c), c.Param("recipe_id"), req.Content)
	if err != nil {
		h.respondError(c, err, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Comments handles GET /recipes/comments/:recipe_id (public).
func (h *recipeHandler) Comments(c *gin.Context) {
	comments, err := h.recipeService.Comments(c.Request.Context(), c.Param("recipe_id"))
	if err != nil {
		h.respondError(c, err, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment handles DELETE /recipes/comments/:recipe_id/:comment_id.
// Only the recipe's author may delete comments on it.
func (h *recipeHandler) DeleteComment(c *gin.Context) {
	err := h.recipeService.DeleteComment(c.Request.Context(),
		middleware.CurrentIdentity(c), c.Param("recipe_id"), c.Param("comment_id"))
	if err != nil {
		h.respondError(c, err, "Comment not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// respondError maps service errors onto HTTP responses. Not-found and
// not-owned arrive here as the same error and leave as the same response.
func (h *recipeHandler) respondError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid id"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		h.logger.Error("Recipe operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
