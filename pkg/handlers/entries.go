package handlers

import (
	"net/http"
	"strconv"

	chiRoute "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/models"
	"headless-cms-backend/pkg/store"
	"headless-cms-backend/pkg/utils"
)

type EntriesHandler struct {
	config      *config.Config
	log         *zap.SugaredLogger
	collections *store.CollectionStore
	entries     *store.EntryStore
}

func NewEntriesHandler(cfg *config.Config, log *zap.SugaredLogger, collections *store.CollectionStore, entries *store.EntryStore) *EntriesHandler {
	return &EntriesHandler{config: cfg, log: log, collections: collections, entries: entries}
}

// helper: resolve {slug}, writing the error response when it fails
func (h *EntriesHandler) collection(w http.ResponseWriter, r *http.Request) (*models.Collection, bool) {
	c, err := h.collections.GetBySlug(r.Context(), chiRoute.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return nil, false
	}
	return c, true
}

// helper: resolve {slug} and {id}
func (h *EntriesHandler) target(w http.ResponseWriter, r *http.Request) (*models.Collection, int64, bool) {
	c, ok := h.collection(w, r)
	if !ok {
		return nil, 0, false
	}
	raw := chiRoute.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, h.config, h.log, errs.NotFound("Entry %q not found", raw))
		return nil, 0, false
	}
	return c, id, true
}

// GET /api/collections/{slug}/entries?status=&filter.<field>=&sort=&page=&per_page=
func (h *EntriesHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	list, err := h.entries.List(r.Context(), c, r.URL.Query())
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WritePaginatedResponse(w, list.Data, list.Pagination)
}

// POST /api/collections/{slug}/entries
func (h *EntriesHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	var req models.CreateEntryInput
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := h.entries.Create(r.Context(), c, req)
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteCreatedResponse(w, e)
}

// GET /api/collections/{slug}/entries/{id}
func (h *EntriesHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	c, id, ok := h.target(w, r)
	if !ok {
		return
	}
	e, err := h.entries.Get(r.Context(), c, id)
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteSuccessResponse(w, e)
}

// PUT/PATCH /api/collections/{slug}/entries/{id}
func (h *EntriesHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	c, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var patch models.EntryPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	e, err := h.entries.Update(r.Context(), c, id, patch)
	if err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteSuccessResponse(w, e)
}

// DELETE /api/collections/{slug}/entries/{id}
func (h *EntriesHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	c, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), c, id); err != nil {
		writeError(w, r, h.config, h.log, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"deleted": true, "id": id})
}
