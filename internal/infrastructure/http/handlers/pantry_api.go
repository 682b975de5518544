package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// PantryHandlers handles favorites and the shopping list
type PantryHandlers struct {
	favorites outbound.FavoriteRepository
	shopping  outbound.ShoppingListRepository
	logger    *zap.Logger
}

// NewPantryHandlers creates a new pantry handlers instance
func NewPantryHandlers(
	favorites outbound.FavoriteRepository,
	shopping outbound.ShoppingListRepository,
	logger *zap.Logger,
) *PantryHandlers {
	return &PantryHandlers{
		favorites: favorites,
		shopping:  shopping,
		logger:    logger,
	}
}

func pathID(r *http.Request) (pantry.ID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewBadRequestError("id must be an integer")
	}
	return pantry.ID(id), nil
}

type addFavoriteRequest struct {
	RecipeName string `json:"recipe_name" validate:"required,max=100"`
	RecipeData string `json:"recipe_data" validate:"required"`
}

// AddFavorite handles POST /api/v1/favorites
func (h *PantryHandlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.favorites.Add(r.Context(), req.RecipeName, req.RecipeData)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: map[string]int64{"id": int64(id)}})
}

// ListFavorites handles GET /api/v1/favorites
func (h *PantryHandlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: favorites})
}

// RemoveFavorite handles DELETE /api/v1/favorites/{id}
func (h *PantryHandlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

type addShoppingRequest struct {
	Ingredients []recipe.Ingredient `json:"ingredients" validate:"required,min=1,max=50"`
	RecipeName  string              `json:"recipe_name" validate:"max=100"`
}

// AddShoppingItems handles POST /api/v1/shopping. Incoming rows merge
// into unchecked rows with the same name; the rest append at the tail.
func (h *PantryHandlers) AddShoppingItems(w http.ResponseWriter, r *http.Request) {
	var req addShoppingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.shopping.AddIngredients(r.Context(), req.Ingredients, req.RecipeName); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true})
}

// ListShoppingItems handles GET /api/v1/shopping
func (h *PantryHandlers) ListShoppingItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.shopping.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

// ToggleShoppingItem handles POST /api/v1/shopping/{id}/toggle
func (h *PantryHandlers) ToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.shopping.Toggle(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

// RemoveShoppingItem handles DELETE /api/v1/shopping/{id}
func (h *PantryHandlers) RemoveShoppingItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.shopping.Remove(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

// ClearShoppingList handles DELETE /api/v1/shopping
func (h *PantryHandlers) ClearShoppingList(w http.ResponseWriter, r *http.Request) {
	if err := h.shopping.Clear(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}
