package domain

import "context"

// ContactRepository defines the operations the external contact repository
// exposes. The backing service owns all storage and business rules; this
// application only queries and mutates through it.
type ContactRepository interface {
	// ListContacts returns one page of contacts whose first or last name
	// contains filter (OR-combined substring match). An empty filter
	// matches everything.
	ListContacts(ctx context.Context, filter string, offset, limit int) ([]*Contact, error)
	// CountContacts returns the total number of contacts matching filter,
	// for pagination.
	CountContacts(ctx context.Context, filter string) (int64, error)
	// GetContact returns a single contact with its phones, or ErrNotFound.
	GetContact(ctx context.Context, id int64) (*Contact, error)
	// FindByName reports whether another contact with exactly this first
	// and last name exists. excludeID is skipped when > 0 (the contact
	// currently being edited).
	FindByName(ctx context.Context, firstName, lastName string, excludeID int64) (bool, error)
	// AddContact creates a contact with its phones in one mutation and
	// returns the new repository-assigned id.
	AddContact(ctx context.Context, firstName, lastName string, phones []PhoneNumber) (int64, error)
	// EditContact updates the contact's scalar name fields only.
	EditContact(ctx context.Context, id int64, firstName, lastName string) error
	// AddPhone attaches one number to a contact.
	AddPhone(ctx context.Context, contactID int64, number string) error
	// DeletePhone detaches one number from a contact.
	DeletePhone(ctx context.Context, contactID int64, number string) error
	// DeleteContact removes a contact and its phones.
	DeleteContact(ctx context.Context, id int64) error
}
