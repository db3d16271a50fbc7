package bundles

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/middleware"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/pkg/queue"
	"github.com/adforge/backend/pkg/response"
)

// GenerateRequest is the body for POST /generations.
type GenerateRequest struct {
	SourceURL string `json:"source_url" binding:"required,url"`
}

// StatusRequest is the body for POST /generations/:id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Store is the bundle persistence surface the handler needs. *Repository
// implements it; tests substitute a fake.
type Store interface {
	Create(ctx context.Context, id, userID uuid.UUID, sourceURL string) (*models.CreativeBundle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CreativeBundle, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CreativeBundle, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BundleStatus) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssetCleaner removes a bundle's stored assets.
type AssetCleaner interface {
	DeleteBundleAssets(ctx context.Context, bundleID string) error
}

// Handler handles creative bundle HTTP endpoints.
type Handler struct {
	repo   Store
	jobs   *queue.Queue
	assets AssetCleaner
	logger *zap.Logger
}

// NewHandler creates a bundles handler. A nil assets cleaner skips asset
// cleanup on delete.
func NewHandler(repo Store, jobs *queue.Queue, assets AssetCleaner, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jobs: jobs, assets: assets, logger: logger}
}

// Generate handles POST /generations: creates a bundle record and enqueues
// the generation job for the worker.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	bundleID := uuid.New()
	b, err := h.repo.Create(c.Request.Context(), bundleID, userID, req.SourceURL)
	if err != nil {
		h.logger.Error("create bundle failed", zap.Error(err))
		response.Internal(c, "failed to create generation")
		return
	}

	err = h.jobs.EnqueueGeneration(c.Request.Context(), queue.GeneratePayload{
		BundleID:  bundleID,
		SourceURL: req.SourceURL,
		UserID:    userID,
	})
	if err != nil {
		h.logger.Error("enqueue generation failed", zap.Error(err), zap.String("bundle_id", bundleID.String()))
		_ = h.repo.MarkFailed(c.Request.Context(), bundleID, "failed to enqueue generation job")
		response.ServiceUnavailable(c, "generation queue unavailable")
		return
	}

	response.Created(c, b)
}

// Get handles GET /generations/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid generation id")
		return
	}
	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "generation not found")
		return
	}
	if !h.canAccess(c, b) {
		response.Forbidden(c, "not your generation")
		return
	}
	response.OK(c, b)
}

// List handles GET /generations: the caller's bundles, newest first.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list bundles failed", zap.Error(err))
		response.Internal(c, "failed to list generations")
		return
	}
	response.OK(c, list)
}

// UpdateStatus handles POST /generations/:id/status. Only forward transitions
// are allowed (draft -> ready -> launched); failed and launched are terminal.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid generation id")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "generation not found")
		return
	}
	if !h.canAccess(c, b) {
		response.Forbidden(c, "not your generation")
		return
	}

	target := models.BundleStatus(req.Status)
	if !models.CanTransition(b.Status, target) {
		response.Conflict(c, "illegal status transition "+string(b.Status)+" -> "+string(target))
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, target); err != nil {
		h.logger.Error("update status failed", zap.Error(err), zap.String("bundle_id", id.String()))
		response.Internal(c, "failed to update status")
		return
	}
	response.OK(c, gin.H{"id": id, "status": target})
}

// Launch handles POST /generations/:id/launch: shorthand for moving a ready
// bundle to launched.
func (h *Handler) Launch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid generation id")
		return
	}
	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "generation not found")
		return
	}
	if !h.canAccess(c, b) {
		response.Forbidden(c, "not your generation")
		return
	}
	if !models.CanTransition(b.Status, models.StatusLaunched) {
		response.Conflict(c, "bundle must be ready before launch, current status: "+string(b.Status))
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, models.StatusLaunched); err != nil {
		h.logger.Error("launch failed", zap.Error(err), zap.String("bundle_id", id.String()))
		response.Internal(c, "failed to launch")
		return
	}
	response.OK(c, gin.H{"id": id, "status": models.StatusLaunched})
}

// Delete handles DELETE /generations/:id: removes the bundle, its creative
// rows and its stored assets. In-flight generations cannot be deleted.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid generation id")
		return
	}
	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "generation not found")
		return
	}
	if !h.canAccess(c, b) {
		response.Forbidden(c, "not your generation")
		return
	}
	if b.Status == models.StatusGenerating {
		response.Conflict(c, "generation still running")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete bundle failed", zap.Error(err), zap.String("bundle_id", id.String()))
		response.Internal(c, "failed to delete generation")
		return
	}
	if h.assets != nil {
		// Best effort: a failed asset cleanup does not fail the request.
		if err := h.assets.DeleteBundleAssets(c.Request.Context(), id.String()); err != nil {
			h.logger.Warn("asset cleanup failed", zap.Error(err), zap.String("bundle_id", id.String()))
		}
	}
	response.NoContent(c)
}

// canAccess allows the bundle owner or an admin.
func (h *Handler) canAccess(c *gin.Context, b *models.CreativeBundle) bool {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.Get(middleware.ContextUserRole)
	return b.UserID == userID || role == string(models.RoleAdmin)
}
