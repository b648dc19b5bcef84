package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aradsms/phonebook_web/internal/phonebook/app"
	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
)

// ContactService is the application surface the transport layer depends on.
// *app.Application satisfies it.
type ContactService interface {
	ListContacts(ctx context.Context, filter string, page int) (*app.ContactPage, error)
	GetContact(ctx context.Context, id int64) (*domain.Contact, error)
	CreateContact(ctx context.Context, draft app.FormDraft) (int64, error)
	UpdateContact(ctx context.Context, id int64, draft app.FormDraft) error
	DeleteContact(ctx context.Context, id int64) error
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
}

// ContactHandler handles the JSON API used by the table's live refresh.
type ContactHandler struct {
	service  ContactService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service ContactService, logger *slog.Logger, validate *validator.Validate) *ContactHandler {
	return &ContactHandler{
		service:  service,
		logger:   logger,
		validate: validate,
	}
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// mapServiceErrorToHTTPStatus converts application errors to HTTP status
// codes. Repository call failures come back as 502: the backend is a remote
// collaborator, not this service.
func mapServiceErrorToHTTPStatus(err error) int {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// respondWithServiceError converts an application error to the JSON error
// body. Validation errors carry their per-field messages; repository
// failures get the generic transient-failure message.
func respondWithServiceError(w http.ResponseWriter, err error) {
	code := mapServiceErrorToHTTPStatus(err)

	var verr *app.ValidationError
	if errors.As(err, &verr) {
		respondWithJSON(w, code, map[string]interface{}{
			"error": verr.Error(),
			"fields": map[string]string{
				"first_name": verr.FirstNameError,
				"last_name":  verr.LastNameError,
			},
		})
		return
	}
	if code == http.StatusBadGateway {
		respondWithError(w, code, app.MsgSomethingWentWrong)
		return
	}
	respondWithError(w, code, err.Error())
}

// RegisterRoutes sets up the routing for contact operations.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts", h.CreateContact)
	r.Get("/contacts/{contactID}", h.GetContact)
	r.Put("/contacts/{contactID}", h.UpdateContact)
	r.Delete("/contacts/{contactID}", h.DeleteContact)
	r.Put("/contacts/{contactID}/favorite", h.ToggleFavorite)
}

func contactIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}

	result, err := h.service.ListContacts(ctx, filter, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "ListContacts call failed", "error", err, "filter", filter)
		respondWithServiceError(w, err)
		return
	}

	responseDTOs := make([]ContactResponseDTO, len(result.Contacts))
	for i, ct := range result.Contacts {
		responseDTOs[i] = contactToResponseDTO(ct)
	}
	respondWithJSON(w, http.StatusOK, ListContactsResponseDTO{
		Contacts:   responseDTOs,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageCount:  result.PageCount,
		PageSize:   result.PageSize,
	})
}

func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := contactIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	ct, err := h.service.GetContact(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "GetContact call failed", "error", err, "contact_id", id)
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, contactToResponseDTO(ct))
}

func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO SaveContactRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	id, err := h.service.CreateContact(ctx, reqDTO.toDraft())
	if err != nil {
		h.logger.ErrorContext(ctx, "CreateContact call failed", "error", err)
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, CreateContactResponseDTO{ID: id})
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := contactIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	var reqDTO SaveContactRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.service.UpdateContact(ctx, id, reqDTO.toDraft()); err != nil {
		h.logger.ErrorContext(ctx, "UpdateContact call failed", "error", err, "contact_id", id)
		respondWithServiceError(w, err)
		return
	}

	ct, err := h.service.GetContact(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "Re-read after update failed", "error", err, "contact_id", id)
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, contactToResponseDTO(ct))
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := contactIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	if err := h.service.DeleteContact(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "DeleteContact call failed", "error", err, "contact_id", id)
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *ContactHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := contactIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	isFavorite, err := h.service.ToggleFavorite(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "ToggleFavorite call failed", "error", err, "contact_id", id)
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, FavoriteResponseDTO{ID: id, IsFavorite: isFavorite})
}
