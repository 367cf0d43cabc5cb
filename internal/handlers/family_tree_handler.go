package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"community-backend/internal/middleware"
	"community-backend/internal/models"
	"community-backend/internal/repositories"
	"community-backend/internal/services"
	"community-backend/internal/tree"
)

type FamilyTreeHandler struct {
	Service *services.FamilyTreeService
}

func NewFamilyTreeHandler(service *services.FamilyTreeService) *FamilyTreeHandler {
	return &FamilyTreeHandler{Service: service}
}

// writeTreeError maps service and graph errors onto HTTP statuses
func writeTreeError(w http.ResponseWriter, err error) {
	var validation *tree.ValidationError
	var exists *services.TreeExistsError
	var upload *services.UploadError

	switch {
	case errors.As(err, &exists):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "Account already has a family tree",
			"tree_id": exists.TreeID,
		})
	case errors.As(err, &validation):
		http.Error(w, validation.Reason, http.StatusBadRequest)
	case errors.As(err, &upload):
		http.Error(w, "Photo upload failed: "+err.Error(), http.StatusBadGateway)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "Not authorized to access this family tree", http.StatusForbidden)
	case errors.Is(err, services.ErrCannotRemoveSelf):
		http.Error(w, "Cannot remove the self member from the tree", http.StatusBadRequest)
	case errors.Is(err, tree.ErrMemberNotFound):
		http.Error(w, "Member not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrTreeNotFound):
		http.Error(w, "Family tree not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrAccountNotFound):
		http.Error(w, "Account not found", http.StatusNotFound)
	default:
		http.Error(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func treeID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// GetMyTree returns the authenticated account's own tree
func (h *FamilyTreeHandler) GetMyTree(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())

	t, err := h.Service.GetMyTree(r.Context(), actor)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetByOwner returns another member's tree, subject to its visibility
func (h *FamilyTreeHandler) GetByOwner(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	accountID, err := strconv.Atoi(mux.Vars(r)["accountID"])
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	t, err := h.Service.GetTreeByOwner(r.Context(), actor, accountID)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// List returns a page of public trees
func (h *FamilyTreeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	trees, total, err := h.Service.ListPublicTrees(r.Context(), page, limit)
	if err != nil {
		http.Error(w, "Failed to fetch family trees: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if trees == nil {
		trees = []*models.FamilyTree{}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	pages := (total + limit - 1) / limit

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trees": trees,
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": pages,
	})
}

// Get returns one tree by ID, subject to its visibility
func (h *FamilyTreeHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	id, err := treeID(r)
	if err != nil {
		http.Error(w, "Invalid tree ID", http.StatusBadRequest)
		return
	}

	t, err := h.Service.GetTree(r.Context(), actor, id)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create provisions the authenticated account's tree
func (h *FamilyTreeHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())

	var req models.CreateFamilyTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.Service.CreateTree(r.Context(), actor, &req)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// AddMember attaches a member to the tree
func (h *FamilyTreeHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	id, err := treeID(r)
	if err != nil {
		http.Error(w, "Invalid tree ID", http.StatusBadRequest)
		return
	}

	var req models.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.Service.AddMember(r.Context(), id, actor, &req)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateMember patches a member's scalar fields
func (h *FamilyTreeHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	id, err := treeID(r)
	if err != nil {
		http.Error(w, "Invalid tree ID", http.StatusBadRequest)
		return
	}
	memberID := mux.Vars(r)["memberID"]

	var req models.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.Service.UpdateMember(r.Context(), id, actor, memberID, &req)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// RemoveMember deletes a member and all edges referencing it
func (h *FamilyTreeHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	id, err := treeID(r)
	if err != nil {
		http.Error(w, "Invalid tree ID", http.StatusBadRequest)
		return
	}
	memberID := mux.Vars(r)["memberID"]

	t, err := h.Service.RemoveMember(r.Context(), id, actor, memberID)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Member removed",
		"tree":    t,
	})
}

// LinkAccount attaches a registered account to a member node
func (h *FamilyTreeHandler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	id, err := treeID(r)
	if err != nil {
		http.Error(w, "Invalid tree ID", http.StatusBadRequest)
		return
	}

	var req models.LinkAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MemberID == "" || req.AccountID == 0 {
		http.Error(w, "member_id and account_id are required", http.StatusBadRequest)
		return
	}

	t, err := h.Service.LinkAccount(r.Context(), id, actor, &req)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Layout returns the generation-band view of a tree
func (h *FamilyTreeHandler) Layout(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AccountFromContext(r.Context())
	id, err := treeID(r)
	if err != nil {
		http.Error(w, "Invalid tree ID", http.StatusBadRequest)
		return
	}

	layout, err := h.Service.GetLayout(r.Context(), actor, id)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}
