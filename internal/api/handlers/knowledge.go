package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/concierge/internal/api"
	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/go-chi/chi/v5"
)

type KnowledgeService interface {
	List(ctx context.Context, category string) []domain.KnowledgeItem
	Categories() []string
	Get(ctx context.Context, id string) (*domain.KnowledgeItem, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type ListKnowledgeResponse struct {
	Items []domain.KnowledgeItem `json:"items"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// List handles GET /api/knowledge, optionally filtered by ?category=.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.svc.List(r.Context(), r.URL.Query().Get("category"))
	api.Success(w, http.StatusOK, ListKnowledgeResponse{Items: items})
}

func (h *KnowledgeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories()})
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, item)
}
