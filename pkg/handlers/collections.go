package handlers

import (
	"net/http"

	chiRoute "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/models"
	"headless-cms-backend/pkg/store"
	"headless-cms-backend/pkg/utils"
)

type CollectionsHandler struct {
	config      *config.Config
	log         *zap.SugaredLogger
	collections *store.CollectionStore
}

func NewCollectionsHandler(cfg *config.Config, log *zap.SugaredLogger, collections *store.CollectionStore) *CollectionsHandler {
	return &CollectionsHandler{config: cfg, log: log, collections: collections}
}

// GET /api/collections
func (h *CollectionsHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	list, err := h.collections.List(r.Context())
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteSuccessResponse(w, list)
}

// POST /api/collections
func (h *CollectionsHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCollectionInput
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.collections.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	h.log.Infow("collection created", "slug", c.Slug, "fields", len(c.Fields))
	utils.WriteCreatedResponse(w, c)
}

// GET /api/collections/{slug}
func (h *CollectionsHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.collections.GetBySlug(r.Context(), chiRoute.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteSuccessResponse(w, c)
}

// PUT/PATCH /api/collections/{slug}
func (h *CollectionsHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	var patch models.CollectionPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	c, err := h.collections.Update(r.Context(), chiRoute.URLParam(r, "slug"), patch)
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteSuccessResponse(w, c)
}

// DELETE /api/collections/{slug}
func (h *CollectionsHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	slug := chiRoute.URLParam(r, "slug")
	if err := h.collections.Delete(r.Context(), slug); err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	h.log.Infow("collection deleted", "slug", slug)
	utils.WriteSuccessResponse(w, map[string]interface{}{"deleted": true, "slug": slug})
}
