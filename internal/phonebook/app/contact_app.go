package app

import (
	"context"
	"log/slog"

	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
	"github.com/aradsms/phonebook_web/internal/phonebook/favorites"
)

// Application orchestrates the phonebook use cases over the external
// contact repository and the client-local favorites store.
type Application struct {
	contactRepo domain.ContactRepository
	favorites   *favorites.Store
	logger      *slog.Logger
	pageSize    int
}

// NewApplication creates a new Application instance.
func NewApplication(
	contactRepo domain.ContactRepository,
	favs *favorites.Store,
	logger *slog.Logger,
	pageSize int,
) *Application {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Application{
		contactRepo: contactRepo,
		favorites:   favs,
		logger:      logger,
		pageSize:    pageSize,
	}
}

// ContactPage is one rendered page of the contact list after the favorites
// overlay has been applied.
type ContactPage struct {
	Contacts   []*domain.Contact
	TotalCount int64
	Page       int // zero-based
	PageCount  int
	PageSize   int
	Filter     string
}

// ListContacts returns one page of contacts matching filter, with favorited
// contacts pulled to the front. Favorites are exempt from the filter and the
// page window; server entries already favorited are deduplicated away.
func (a *Application) ListContacts(ctx context.Context, filter string, page int) (*ContactPage, error) {
	if page < 0 {
		page = 0
	}

	count, err := a.contactRepo.CountContacts(ctx, filter)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to count contacts", "error", err, "filter", filter)
		return nil, err
	}

	serverContacts, err := a.contactRepo.ListContacts(ctx, filter, page*a.pageSize, a.pageSize)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to list contacts", "error", err, "filter", filter, "page", page)
		return nil, err
	}

	pageCount := 1
	if count > 0 {
		pageCount = int((count + int64(a.pageSize) - 1) / int64(a.pageSize))
	}

	return &ContactPage{
		Contacts:   a.favorites.Merge(serverContacts),
		TotalCount: count,
		Page:       page,
		PageCount:  pageCount,
		PageSize:   a.pageSize,
		Filter:     filter,
	}, nil
}

// GetContact returns a single contact with its favorite flag stamped from
// the local set.
func (a *Application) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	ct, err := a.contactRepo.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	ct.IsFavorite = a.favorites.Contains(ct.ID)
	return ct, nil
}

// CreateContact validates the draft, runs the duplicate guard and creates
// the contact with all its phones in one mutation. Validation or duplicate
// failures leave the repository untouched.
func (a *Application) CreateContact(ctx context.Context, draft FormDraft) (int64, error) {
	if verr := draft.Validate(); verr != nil {
		return 0, verr
	}

	exists, err := a.contactRepo.FindByName(ctx, draft.FirstName, draft.LastName, 0)
	if err != nil {
		a.logger.ErrorContext(ctx, "Duplicate check failed", "error", err)
		return 0, err
	}
	if exists {
		return 0, domain.ErrDuplicateName
	}

	phones := make([]domain.PhoneNumber, 0, len(draft.Phones))
	for _, number := range draft.SubmittedPhones() {
		phones = append(phones, domain.PhoneNumber{Number: number})
	}

	id, err := a.contactRepo.AddContact(ctx, draft.FirstName, draft.LastName, phones)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to create contact", "error", err)
		return 0, err
	}
	a.logger.InfoContext(ctx, "Contact created", "contact_id", id)
	return id, nil
}

// UpdateContact validates the draft, runs the duplicate guard excluding the
// contact itself, reconciles the phone set, and only then updates the name
// fields. A reconciliation failure stops the name update so a stale phone
// set is never paired with a fresh name.
func (a *Application) UpdateContact(ctx context.Context, id int64, draft FormDraft) error {
	if verr := draft.Validate(); verr != nil {
		return verr
	}

	exists, err := a.contactRepo.FindByName(ctx, draft.FirstName, draft.LastName, id)
	if err != nil {
		a.logger.ErrorContext(ctx, "Duplicate check failed", "error", err, "contact_id", id)
		return err
	}
	if exists {
		return domain.ErrDuplicateName
	}

	before, err := a.contactRepo.GetContact(ctx, id)
	if err != nil {
		return err
	}

	submitted := draft.SubmittedPhones()
	if err := a.reconcilePhones(ctx, id, before.Phones, submitted); err != nil {
		a.logger.ErrorContext(ctx, "Phone reconciliation failed", "error", err, "contact_id", id)
		return err
	}

	if err := a.contactRepo.EditContact(ctx, id, draft.FirstName, draft.LastName); err != nil {
		return err
	}

	// Keep the favorite snapshot in sync with the repository state.
	updated := &domain.Contact{ID: id, FirstName: draft.FirstName, LastName: draft.LastName}
	for _, number := range submitted {
		updated.Phones = append(updated.Phones, domain.PhoneNumber{Number: number})
	}
	if err := a.favorites.Update(updated); err != nil {
		a.logger.WarnContext(ctx, "Failed to refresh favorite snapshot", "error", err, "contact_id", id)
	}

	a.logger.InfoContext(ctx, "Contact updated", "contact_id", id)
	return nil
}

// DeleteContact removes the contact from the repository and from the
// favorite set, so no dangling favorite survives the delete.
func (a *Application) DeleteContact(ctx context.Context, id int64) error {
	if err := a.contactRepo.DeleteContact(ctx, id); err != nil {
		a.logger.ErrorContext(ctx, "Failed to delete contact", "error", err, "contact_id", id)
		return err
	}
	if err := a.favorites.Remove(id); err != nil {
		a.logger.WarnContext(ctx, "Failed to remove deleted contact from favorites", "error", err, "contact_id", id)
	}
	a.logger.InfoContext(ctx, "Contact deleted", "contact_id", id)
	return nil
}

// ToggleFavorite flips the contact's membership in the local favorite set.
// Client-local state only; the repository is read at most once (for the
// snapshot) and never mutated.
func (a *Application) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	if a.favorites.Contains(id) {
		if err := a.favorites.Remove(id); err != nil {
			return true, err
		}
		return false, nil
	}

	ct, err := a.contactRepo.GetContact(ctx, id)
	if err != nil {
		return false, err
	}
	return a.favorites.Toggle(ct)
}
