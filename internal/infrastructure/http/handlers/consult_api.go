package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// ConsultHandlers handles recipe consultation requests
type ConsultHandlers struct {
	consultService inbound.ConsultService
	logger         *zap.Logger
}

// NewConsultHandlers creates a new consultation handlers instance
func NewConsultHandlers(consultService inbound.ConsultService, logger *zap.Logger) *ConsultHandlers {
	return &ConsultHandlers{
		consultService: consultService,
		logger:         logger,
	}
}

type consultRequest struct {
	Mode        string   `json:"mode" validate:"required,oneof=consult random lazy"`
	Ingredients []string `json:"ingredients" validate:"max=30,dive,max=100"`
	Mood        string   `json:"mood" validate:"max=200"`
	CookingTime string   `json:"cooking_time" validate:"max=50"`
	Servings    int      `json:"servings" validate:"min=0,max=20"`
}

// Consult handles POST /api/v1/consult
func (h *ConsultHandlers) Consult(w http.ResponseWriter, r *http.Request) {
	var req consultRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	rec, err := h.consultService.Consult(r.Context(), outbound.ConsultationParams{
		Mode:        outbound.Mode(req.Mode),
		Ingredients: req.Ingredients,
		Mood:        req.Mood,
		CookingTime: req.CookingTime,
		Servings:    req.Servings,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

type chatRequest struct {
	Recipe     *recipe.Recipe         `json:"recipe" validate:"required"`
	Transcript []outbound.ChatMessage `json:"transcript" validate:"max=50,dive"`
	Message    string                 `json:"message" validate:"required,max=2000"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /api/v1/recipes/chat
func (h *ConsultHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reply, err := h.consultService.Chat(r.Context(), req.Recipe, req.Transcript, req.Message)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: chatResponse{Reply: reply}})
}
