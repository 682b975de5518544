package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/credential"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// SettingsHandlers handles the credential and preference surface.
// These routes stay outside the credential gate.
type SettingsHandlers struct {
	credentials outbound.CredentialRepository
	preferences outbound.PreferenceRepository
	logger      *zap.Logger
}

// NewSettingsHandlers creates a new settings handlers instance
func NewSettingsHandlers(
	credentials outbound.CredentialRepository,
	preferences outbound.PreferenceRepository,
	logger *zap.Logger,
) *SettingsHandlers {
	return &SettingsHandlers{
		credentials: credentials,
		preferences: preferences,
		logger:      logger,
	}
}

type setCredentialRequest struct {
	APIKey string `json:"api_key" validate:"required,max=200"`
}

// SetCredential handles PUT /api/v1/settings/credential. Only the
// format is checked here; a wrong key surfaces as 401 on the first
// provider call.
func (h *SettingsHandlers) SetCredential(w http.ResponseWriter, r *http.Request) {
	var req setCredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.credentials.Set(r.Context(), credential.Credential(req.APIKey)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

type credentialStatusResponse struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
}

// CredentialStatus handles GET /api/v1/settings/credential. The key
// itself never leaves the store; only presence and a masked form do.
func (h *SettingsHandlers) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	cred, ok, err := h.credentials.Get(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := credentialStatusResponse{Configured: ok}
	if ok {
		status.Masked = cred.Masked()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: status})
}

// RemoveCredential handles DELETE /api/v1/settings/credential
func (h *SettingsHandlers) RemoveCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Remove(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// Theme handles GET /api/v1/settings/theme
func (h *SettingsHandlers) Theme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.preferences.Theme(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"theme": theme}})
}

// SetTheme handles PUT /api/v1/settings/theme
func (h *SettingsHandlers) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.preferences.SetTheme(r.Context(), req.Theme); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}
