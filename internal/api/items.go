package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/resell/internal/imaging"
	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
)

// Paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ItemsHandler handles listing endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// parsePaging reads the page and pageSize query parameters.
func parsePaging(r *http.Request) (page, pageSize int, ok bool) {
	page, pageSize = 0, DefaultPageSize

	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		pageSize = min(n, MaxPageSize)
	}
	return page, pageSize, true
}

func (h *ItemsHandler) list(w http.ResponseWriter, r *http.Request, query string, filter model.FeedFilter) {
	page, pageSize, ok := parsePaging(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "page must be >= 0 and pageSize >= 1")
		return
	}

	items, total, err := store.ListAvailableItems(r.Context(), h.DB, query, filter, page, pageSize)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	jsonResponse(w, http.StatusOK, model.Page{
		Items:         items,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    model.TotalPages(total, pageSize),
		TotalElements: total,
	})
}

// Feed handles GET /feed. The optional brand, condition, lowest, highest
// and size parameters narrow the result.
func (h *ItemsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseFeedFilter(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.list(w, r, "", filter)
}

// Search handles GET /items/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		jsonError(w, http.StatusBadRequest, "query required")
		return
	}
	h.list(w, r, query, model.FeedFilter{})
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, req)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item listed", "user", claims.Username, "item", item.ID, "price", item.Price)
	jsonResponse(w, http.StatusCreated, item)
}

// ownedItem loads the item named by the path and checks that the caller may
// change it. It writes the error response and returns nil when not.
func (h *ItemsHandler) ownedItem(w http.ResponseWriter, r *http.Request) *model.Item {
	claims := GetClaims(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}

	switch err := model.CanEdit(&model.Identity{Username: claims.Username}, item); {
	case errors.Is(err, model.ErrNotOwner):
		jsonError(w, http.StatusForbidden, "item belongs to another seller")
		return nil
	case errors.Is(err, model.ErrNotAvailable):
		jsonError(w, http.StatusConflict, "item not available")
		return nil
	case err != nil:
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	return item
}

// Update handles PUT /items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	err := store.UpdateItem(r.Context(), h.DB, item.ID, req)
	if errors.Is(err, store.ErrItemNotAvailable) {
		jsonError(w, http.StatusConflict, "item not available")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	err := store.DeleteItem(r.Context(), h.DB, item.ID)
	if errors.Is(err, store.ErrItemNotAvailable) {
		jsonError(w, http.StatusConflict, "item not available")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", item.Username, "item", item.ID)
	noContent(w)
}

// UploadImage handles PUT /items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	err = store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME)
	if errors.Is(err, store.ErrItemNotAvailable) {
		jsonError(w, http.StatusConflict, "item not available")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	noContent(w)
}

// GetImage handles GET /items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
