package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aradsms/phonebook_web/internal/phonebook/app"
	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
)

// PageHandler renders the server-side HTML pages: the contact list with
// search and pagination, and the add/edit form.
type PageHandler struct {
	service  ContactService
	logger   *slog.Logger
	renderer *renderer
}

// NewPageHandler creates a new PageHandler with its template set parsed.
func NewPageHandler(service ContactService, logger *slog.Logger) (*PageHandler, error) {
	rd, err := newRenderer(logger)
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		service:  service,
		logger:   logger,
		renderer: rd,
	}, nil
}

// RegisterRoutes sets up the HTML page routes.
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListPage)
	r.Get("/contacts/new", h.NewContactPage)
	r.Post("/contacts", h.CreateContact)
	r.Get("/contacts/{contactID}/edit", h.EditContactPage)
	r.Post("/contacts/{contactID}", h.UpdateContact)
	r.Post("/contacts/{contactID}/delete", h.DeleteContact)
	r.Post("/contacts/{contactID}/favorite", h.ToggleFavorite)
	r.Handle("/static/*", staticHandler())
}

// listPageData feeds the contact list template.
type listPageData struct {
	Flash    *flash
	Query    string
	Contacts []*domain.Contact
	Empty    bool

	Page        int // zero-based, as the service reports it
	DisplayPage int // one-based, for rendering
	PageCount   int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// formPageData feeds the add/edit form template.
type formPageData struct {
	Flash     *flash
	Action    string // "Add" or "Edit"
	ContactID int64

	FirstName string
	LastName  string
	Phones    []string

	FirstNameError string
	LastNameError  string
	FormError      string
}

// notFoundPageData feeds the empty-state page.
type notFoundPageData struct {
	Flash   *flash
	Title   string
	Message string
}

func (h *PageHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}

	result, err := h.service.ListContacts(ctx, query, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load contact list page", "error", err, "filter", query)
		h.renderer.render(w, http.StatusBadGateway, "notfound.html", notFoundPageData{
			Flash:   popFlash(w, r),
			Title:   app.MsgSomethingWentWrong,
			Message: "The contact service could not be reached. Please try again.",
		})
		return
	}

	data := listPageData{
		Flash:       popFlash(w, r),
		Query:       query,
		Contacts:    result.Contacts,
		Empty:       len(result.Contacts) == 0,
		Page:        result.Page,
		DisplayPage: result.Page + 1,
		PageCount:   result.PageCount,
		HasPrev:     result.Page > 0,
		HasNext:     result.Page < result.PageCount-1,
		PrevPage:    result.Page - 1,
		NextPage:    result.Page + 1,
	}
	h.renderer.render(w, http.StatusOK, "list.html", data)
}

func (h *PageHandler) NewContactPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "form.html", formPageData{
		Flash:  popFlash(w, r),
		Action: "Add",
		Phones: []string{""},
	})
}

func (h *PageHandler) EditContactPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	ct, err := h.service.GetContact(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.renderNotFound(w, r)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load contact for editing", "error", err, "contact_id", id)
		setFlash(w, "error", app.MsgSomethingWentWrong)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	phones := ct.PhoneNumbers()
	if len(phones) == 0 {
		phones = []string{""}
	}
	h.renderer.render(w, http.StatusOK, "form.html", formPageData{
		Action:    "Edit",
		ContactID: ct.ID,
		FirstName: ct.FirstName,
		LastName:  ct.LastName,
		Phones:    phones,
	})
}

func (h *PageHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draft, err := draftFromForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if _, err := h.service.CreateContact(ctx, draft); err != nil {
		h.rerenderForm(w, r, "Add", 0, draft, err)
		return
	}

	setFlash(w, "success", "Contact added")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	draft, err := draftFromForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateContact(ctx, id, draft); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.renderNotFound(w, r)
			return
		}
		h.rerenderForm(w, r, "Edit", id, draft, err)
		return
	}

	setFlash(w, "success", "Contact updated")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	if err := h.service.DeleteContact(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "Failed to delete contact", "error", err, "contact_id", id)
		setFlash(w, "error", app.MsgSomethingWentWrong)
	} else {
		setFlash(w, "success", "Contact deleted")
	}
	http.Redirect(w, r, listURL(r), http.StatusSeeOther)
}

func (h *PageHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	if _, err := h.service.ToggleFavorite(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "Failed to toggle favorite", "error", err, "contact_id", id)
		setFlash(w, "error", app.MsgSomethingWentWrong)
	}
	http.Redirect(w, r, listURL(r), http.StatusSeeOther)
}

// draftFromForm builds a FormDraft from the submitted form fields. Phone
// slots arrive as repeated "phones" values, in slot order.
func draftFromForm(r *http.Request) (app.FormDraft, error) {
	if err := r.ParseForm(); err != nil {
		return app.FormDraft{}, err
	}
	return app.FormDraft{
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Phones:    r.PostForm["phones"],
	}, nil
}

// listURL rebuilds the list location the action form was shown on, so the
// active search and page survive row actions.
func listURL(r *http.Request) string {
	values := url.Values{}
	if q := r.PostForm.Get("q"); q != "" {
		values.Set("q", q)
	}
	if page := r.PostForm.Get("page"); page != "" && page != "0" {
		values.Set("page", page)
	}
	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}

// rerenderForm redisplays the form with the user's input and the error that
// blocked the submit.
func (h *PageHandler) rerenderForm(w http.ResponseWriter, r *http.Request, action string, id int64, draft app.FormDraft, err error) {
	data := formPageData{
		Action:    action,
		ContactID: id,
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Phones:    draft.Phones,
	}
	if len(data.Phones) == 0 {
		data.Phones = []string{""}
	}

	status := mapServiceErrorToHTTPStatus(err)
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		data.FirstNameError = verr.FirstNameError
		data.LastNameError = verr.LastNameError
		data.FormError = verr.Message
	case errors.Is(err, domain.ErrDuplicateName):
		data.FormError = app.MsgDuplicateContact
	default:
		h.logger.ErrorContext(r.Context(), fmt.Sprintf("%s contact failed", action), "error", err, "contact_id", id)
		data.FormError = app.MsgSomethingWentWrong
	}
	h.renderer.render(w, status, "form.html", data)
}

func (h *PageHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusNotFound, "notfound.html", notFoundPageData{
		Flash:   popFlash(w, r),
		Title:   "Oops, the contact you're looking for doesn't exist",
		Message: "Try using another keyword",
	})
}
