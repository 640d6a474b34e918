package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/resourcehub/engine/internal/api/types"
	"github.com/resourcehub/engine/internal/api/validators"
	"github.com/resourcehub/engine/internal/models"
	"github.com/resourcehub/engine/internal/repository"
	"gorm.io/datatypes"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ResourcesHandler exposes the resource CRUD surface. Structural request
// checks happen here so malformed input never reaches the repository; the
// repository remains the authority on business invariants.
type ResourcesHandler struct {
	repo repository.ResourceRepository
}

func NewResourcesHandler(repo repository.ResourceRepository) *ResourcesHandler {
	return &ResourcesHandler{repo: repo}
}

func (h *ResourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	items, total, totalPages, err := h.repo.List(r.Context(), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Resource{}
	}
	writeJSON(w, http.StatusOK, types.SuccessResponse{
		Data: items,
		Pagination: &types.Pagination{
			Page:       filters.Page,
			Limit:      filters.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func (h *ResourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalid(w, "id must be a positive integer")
		return
	}
	res, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res == nil {
		writeNotFound(w, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, types.SuccessResponse{Data: res})
}

func (h *ResourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json body")
		return
	}
	res, msg := resourceFromRequest(&req)
	if msg != "" {
		writeInvalid(w, msg)
		return
	}
	if err := h.repo.Create(r.Context(), res); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.SuccessResponse{Data: res, Message: "resource created"})
}

func (h *ResourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalid(w, "id must be a positive integer")
		return
	}
	var req types.UpdateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json body")
		return
	}
	if err := validators.Struct(req); err != nil {
		writeInvalid(w, err.Error())
		return
	}
	// Cheap checks before the round trip; the repository re-validates.
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeInvalid(w, "name must not be empty")
		return
	}
	if req.Value != nil && *req.Value < 0 {
		writeInvalid(w, "value must be non-negative")
		return
	}

	patch := repository.UpdatePatch{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Value:       req.Value,
	}
	if len(req.Metadata) > 0 {
		patch.Metadata = datatypes.JSON(req.Metadata)
	}

	res, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res == nil {
		writeNotFound(w, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, types.SuccessResponse{Data: res, Message: "resource updated"})
}

func (h *ResourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalid(w, "id must be a positive integer")
		return
	}
	removed, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !removed {
		writeNotFound(w, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, types.SuccessResponse{Message: "resource deleted"})
}

func (h *ResourcesHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var reqs []types.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeInvalid(w, "body must be a json array of resources")
		return
	}
	if len(reqs) == 0 {
		writeInvalid(w, "bulk payload must contain at least one resource")
		return
	}

	list := make([]*models.Resource, 0, len(reqs))
	for i := range reqs {
		res, msg := resourceFromRequest(&reqs[i])
		if msg != "" {
			writeInvalid(w, fmt.Sprintf("element %d: %s", i, msg))
			return
		}
		list = append(list, res)
	}

	if err := h.repo.BulkCreate(r.Context(), list); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.SuccessResponse{
		Data:    map[string]int{"created": len(list)},
		Message: fmt.Sprintf("%d resources created", len(list)),
	})
}

func (h *ResourcesHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Statistics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.SuccessResponse{Data: stats})
}

// resourceFromRequest validates the structural shape of a create request and
// maps it onto the model. Returns a non-empty message on violation.
func resourceFromRequest(req *types.CreateResourceRequest) (*models.Resource, string) {
	if err := validators.Struct(*req); err != nil {
		return nil, err.Error()
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, "name must not be empty"
	}
	if *req.Value < 0 {
		return nil, "value must be non-negative"
	}
	res := &models.Resource{
		Name:        name,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Value:       *req.Value,
	}
	if len(req.Metadata) > 0 {
		res.Metadata = datatypes.JSON(req.Metadata)
	}
	return res, ""
}

// parseListFilters reads the recognized query parameters, discarding
// unrecognized ones. Absent page/limit fall back to defaults; present but
// malformed or out-of-range values are rejected.
func parseListFilters(r *http.Request) (repository.ListFilters, error) {
	q := r.URL.Query()
	f := repository.ListFilters{Page: defaultPage, Limit: defaultLimit}

	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return f, fmt.Errorf("page must be a positive integer")
		}
		f.Page = n
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > repository.MaxPageSize {
			return f, fmt.Errorf("limit must be an integer between 1 and %d", repository.MaxPageSize)
		}
		f.Limit = n
	}
	if s := q.Get("status"); s != "" {
		if !models.ValidStatus(s) {
			return f, fmt.Errorf("invalid status %q", s)
		}
		f.Status = &s
	}
	if s := q.Get("type"); s != "" {
		if !models.ValidType(s) {
			return f, fmt.Errorf("invalid type %q", s)
		}
		f.Type = &s
	}
	if s := q.Get("minValue"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return f, fmt.Errorf("minValue must be a number")
		}
		f.MinValue = &v
	}
	if s := q.Get("maxValue"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return f, fmt.Errorf("maxValue must be a number")
		}
		f.MaxValue = &v
	}
	if s := q.Get("createdFrom"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return f, fmt.Errorf("createdFrom must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		f.CreatedFrom = &t
	}
	if s := q.Get("createdTo"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return f, fmt.Errorf("createdTo must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		f.CreatedTo = &t
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
