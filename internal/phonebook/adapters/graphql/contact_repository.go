package graphql

import (
	"context"
	"log/slog"

	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
)

const getContactListQuery = `
	query GetContactList($where: contact_bool_exp, $limit: Int, $offset: Int) {
		contact(where: $where, limit: $limit, offset: $offset, order_by: {first_name: asc}) {
			id
			first_name
			last_name
			phones {
				number
			}
		}
	}
`

const getContactListCountQuery = `
	query GetContactListCount($where: contact_bool_exp) {
		contact_aggregate(where: $where) {
			aggregate {
				count
			}
		}
	}
`

const getContactDetailQuery = `
	query GetContactDetail($id: Int!) {
		contact_by_pk(id: $id) {
			id
			first_name
			last_name
			phones {
				number
			}
		}
	}
`

const addContactWithPhonesMutation = `
	mutation AddContactWithPhones($first_name: String!, $last_name: String!, $phones: [phone_insert_input!]!) {
		insert_contact(objects: {first_name: $first_name, last_name: $last_name, phones: {data: $phones}}) {
			returning {
				id
			}
		}
	}
`

const editContactMutation = `
	mutation EditContactById($id: Int!, $_set: contact_set_input) {
		update_contact_by_pk(pk_columns: {id: $id}, _set: $_set) {
			id
		}
	}
`

const addNumberToContactMutation = `
	mutation AddNumberToContact($contact_id: Int!, $phone_number: String!) {
		insert_phone(objects: {contact_id: $contact_id, number: $phone_number}) {
			returning {
				id
			}
		}
	}
`

const deleteNumberFromContactMutation = `
	mutation DeleteNumberFromContact($contact_id: Int!, $number: String!) {
		delete_phone(where: {contact_id: {_eq: $contact_id}, number: {_eq: $number}}) {
			affected_rows
		}
	}
`

const deleteContactMutation = `
	mutation DeleteContact($id: Int!) {
		delete_contact_by_pk(id: $id) {
			id
		}
	}
`

// contactRecord mirrors the repository's wire representation of a contact.
type contactRecord struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phones    []struct {
		Number string `json:"number"`
	} `json:"phones"`
}

func (rec *contactRecord) toDomain() *domain.Contact {
	ct := &domain.Contact{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Phones:    make([]domain.PhoneNumber, len(rec.Phones)),
	}
	for i, p := range rec.Phones {
		ct.Phones[i] = domain.PhoneNumber{Number: p.Number}
	}
	return ct
}

// nameFilter builds the OR-combined substring match the list views use:
// first_name LIKE %filter% OR last_name LIKE %filter%.
func nameFilter(filter string) map[string]interface{} {
	pattern := "%" + filter + "%"
	return map[string]interface{}{
		"_or": []map[string]interface{}{
			{"first_name": map[string]interface{}{"_like": pattern}},
			{"last_name": map[string]interface{}{"_like": pattern}},
		},
	}
}

// ContactRepository implements domain.ContactRepository against the
// external GraphQL endpoint.
type ContactRepository struct {
	client *Client
	logger *slog.Logger
}

func NewContactRepository(client *Client, logger *slog.Logger) *ContactRepository {
	return &ContactRepository{client: client, logger: logger}
}

func (r *ContactRepository) ListContacts(ctx context.Context, filter string, offset, limit int) ([]*domain.Contact, error) {
	req := r.client.newRequest(getContactListQuery)
	req.Var("where", nameFilter(filter))
	req.Var("limit", limit)
	req.Var("offset", offset)

	var resp struct {
		Contact []contactRecord `json:"contact"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error listing contacts", "error", err, "filter", filter)
		return nil, err
	}

	contacts := make([]*domain.Contact, len(resp.Contact))
	for i := range resp.Contact {
		contacts[i] = resp.Contact[i].toDomain()
	}
	return contacts, nil
}

func (r *ContactRepository) CountContacts(ctx context.Context, filter string) (int64, error) {
	req := r.client.newRequest(getContactListCountQuery)
	req.Var("where", nameFilter(filter))

	var resp struct {
		ContactAggregate struct {
			Aggregate struct {
				Count int64 `json:"count"`
			} `json:"aggregate"`
		} `json:"contact_aggregate"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error counting contacts", "error", err, "filter", filter)
		return 0, err
	}
	return resp.ContactAggregate.Aggregate.Count, nil
}

func (r *ContactRepository) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	req := r.client.newRequest(getContactDetailQuery)
	req.Var("id", id)

	var resp struct {
		ContactByPk *contactRecord `json:"contact_by_pk"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error getting contact by ID", "error", err, "contact_id", id)
		return nil, err
	}
	if resp.ContactByPk == nil {
		r.logger.WarnContext(ctx, "Contact not found", "contact_id", id)
		return nil, domain.ErrNotFound
	}
	return resp.ContactByPk.toDomain(), nil
}

func (r *ContactRepository) FindByName(ctx context.Context, firstName, lastName string, excludeID int64) (bool, error) {
	// Exact match on both name fields; the edited contact itself is
	// excluded so renames that keep the name are not self-blocking.
	where := map[string]interface{}{
		"first_name": map[string]interface{}{"_eq": firstName},
		"last_name":  map[string]interface{}{"_eq": lastName},
	}
	if excludeID > 0 {
		where["id"] = map[string]interface{}{"_neq": excludeID}
	}

	req := r.client.newRequest(getContactListQuery)
	req.Var("where", where)
	req.Var("limit", 1)
	req.Var("offset", 0)

	var resp struct {
		Contact []contactRecord `json:"contact"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		// An inconclusive check must fail the submit, never pass as
		// "no duplicate".
		r.logger.ErrorContext(ctx, "Error checking for duplicate name", "error", err, "first_name", firstName, "last_name", lastName)
		return false, err
	}
	return len(resp.Contact) > 0, nil
}

func (r *ContactRepository) AddContact(ctx context.Context, firstName, lastName string, phones []domain.PhoneNumber) (int64, error) {
	phoneInputs := make([]map[string]interface{}, len(phones))
	for i, p := range phones {
		phoneInputs[i] = map[string]interface{}{"number": p.Number}
	}

	req := r.client.newRequest(addContactWithPhonesMutation)
	req.Var("first_name", firstName)
	req.Var("last_name", lastName)
	req.Var("phones", phoneInputs)

	var resp struct {
		InsertContact struct {
			Returning []struct {
				ID int64 `json:"id"`
			} `json:"returning"`
		} `json:"insert_contact"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error creating contact", "error", err, "first_name", firstName, "last_name", lastName)
		return 0, err
	}
	if len(resp.InsertContact.Returning) == 0 {
		r.logger.ErrorContext(ctx, "Insert returned no contact id", "first_name", firstName, "last_name", lastName)
		return 0, domain.ErrNotFound
	}
	id := resp.InsertContact.Returning[0].ID
	r.logger.InfoContext(ctx, "Contact created", "contact_id", id)
	return id, nil
}

func (r *ContactRepository) EditContact(ctx context.Context, id int64, firstName, lastName string) error {
	req := r.client.newRequest(editContactMutation)
	req.Var("id", id)
	req.Var("_set", map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
	})

	var resp struct {
		UpdateContactByPk *struct {
			ID int64 `json:"id"`
		} `json:"update_contact_by_pk"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error updating contact", "error", err, "contact_id", id)
		return err
	}
	if resp.UpdateContactByPk == nil {
		r.logger.WarnContext(ctx, "Contact to update not found", "contact_id", id)
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Contact updated", "contact_id", id)
	return nil
}

func (r *ContactRepository) AddPhone(ctx context.Context, contactID int64, number string) error {
	req := r.client.newRequest(addNumberToContactMutation)
	req.Var("contact_id", contactID)
	req.Var("phone_number", number)

	var resp struct {
		InsertPhone struct {
			Returning []struct {
				ID int64 `json:"id"`
			} `json:"returning"`
		} `json:"insert_phone"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error adding phone number", "error", err, "contact_id", contactID, "number", number)
		return err
	}
	return nil
}

func (r *ContactRepository) DeletePhone(ctx context.Context, contactID int64, number string) error {
	req := r.client.newRequest(deleteNumberFromContactMutation)
	req.Var("contact_id", contactID)
	req.Var("number", number)

	var resp struct {
		DeletePhone struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"delete_phone"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error deleting phone number", "error", err, "contact_id", contactID, "number", number)
		return err
	}
	return nil
}

func (r *ContactRepository) DeleteContact(ctx context.Context, id int64) error {
	req := r.client.newRequest(deleteContactMutation)
	req.Var("id", id)

	var resp struct {
		DeleteContactByPk *struct {
			ID int64 `json:"id"`
		} `json:"delete_contact_by_pk"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		r.logger.ErrorContext(ctx, "Error deleting contact", "error", err, "contact_id", id)
		return err
	}
	if resp.DeleteContactByPk == nil {
		r.logger.WarnContext(ctx, "Contact to delete not found", "contact_id", id)
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Contact deleted", "contact_id", id)
	return nil
}
