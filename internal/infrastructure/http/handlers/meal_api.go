package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// MealHandlers handles meal logging and history requests
type MealHandlers struct {
	mealService inbound.MealService
	logger      *zap.Logger
}

// NewMealHandlers creates a new meal handlers instance
func NewMealHandlers(mealService inbound.MealService, logger *zap.Logger) *MealHandlers {
	return &MealHandlers{
		mealService: mealService,
		logger:      logger,
	}
}

type logMealRequest struct {
	Recipe *recipe.Recipe `json:"recipe" validate:"required"`
}

type logMealResponse struct {
	ID int64 `json:"id"`
}

// LogCooked handles POST /api/v1/meals. The response returns as soon
// as the meal is saved; nutrition data appears on a later read.
func (h *MealHandlers) LogCooked(w http.ResponseWriter, r *http.Request) {
	var req logMealRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.mealService.LogCookedMeal(r.Context(), req.Recipe)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: logMealResponse{ID: int64(id)}})
}

type manualMealRequest struct {
	RecipeName  string   `json:"recipe_name" validate:"required,max=100"`
	Category    string   `json:"category" validate:"required"`
	Ingredients []string `json:"ingredients" validate:"max=30,dive,max=100"`
	Seasoning   string   `json:"seasoning" validate:"max=200"`
}

// LogManual handles POST /api/v1/meals/manual
func (h *MealHandlers) LogManual(w http.ResponseWriter, r *http.Request) {
	var req manualMealRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, pfc, err := h.mealService.LogManualMeal(r.Context(), inbound.ManualMealInput{
		RecipeName:  req.RecipeName,
		Category:    recipe.Category(req.Category),
		Ingredients: req.Ingredients,
		Seasoning:   req.Seasoning,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: map[string]interface{}{
		"id":  int64(id),
		"pfc": pfc,
	}})
}

// List handles GET /api/v1/meals
func (h *MealHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, h.logger, errors.NewBadRequestError("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	meals, err := h.mealService.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: meals})
}

// WeeklyReport handles GET /api/v1/meals/report
func (h *MealHandlers) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.mealService.WeeklyReport(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: report})
}
