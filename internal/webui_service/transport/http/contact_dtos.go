package http

import (
	"github.com/aradsms/phonebook_web/internal/phonebook/app"
	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
)

// --- Contact DTOs ---

// ContactPhoneDTO is one phone slot in requests and responses.
type ContactPhoneDTO struct {
	Number string `json:"number"`
}

// SaveContactRequestDTO is used for both creating and updating a contact.
// The character rule on the name fields is enforced by the application
// layer, which owns the user-facing messages.
type SaveContactRequestDTO struct {
	FirstName string            `json:"first_name" validate:"required,max=255"`
	LastName  string            `json:"last_name" validate:"required,max=255"`
	Phones    []ContactPhoneDTO `json:"phones" validate:"required,min=1,dive"`
}

func (dto *SaveContactRequestDTO) toDraft() app.FormDraft {
	phones := make([]string, len(dto.Phones))
	for i, p := range dto.Phones {
		phones[i] = p.Number
	}
	return app.FormDraft{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Phones:    phones,
	}
}

// ContactResponseDTO represents a contact in HTTP responses.
type ContactResponseDTO struct {
	ID         int64             `json:"id"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Phones     []ContactPhoneDTO `json:"phones"`
	IsFavorite bool              `json:"is_favorite"`
}

// ListContactsResponseDTO is the response for listing contacts. Contacts
// holds the favorites-first merged page.
type ListContactsResponseDTO struct {
	Contacts   []ContactResponseDTO `json:"contacts"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	PageCount  int                  `json:"page_count"`
	PageSize   int                  `json:"page_size"`
}

// CreateContactResponseDTO is returned after a successful create.
type CreateContactResponseDTO struct {
	ID int64 `json:"id"`
}

// FavoriteResponseDTO is returned after a favorite toggle.
type FavoriteResponseDTO struct {
	ID         int64 `json:"id"`
	IsFavorite bool  `json:"is_favorite"`
}

// Helper to convert a domain Contact to its response DTO.
func contactToResponseDTO(ct *domain.Contact) ContactResponseDTO {
	phones := make([]ContactPhoneDTO, len(ct.Phones))
	for i, p := range ct.Phones {
		phones[i] = ContactPhoneDTO{Number: p.Number}
	}
	return ContactResponseDTO{
		ID:         ct.ID,
		FirstName:  ct.FirstName,
		LastName:   ct.LastName,
		Phones:     phones,
		IsFavorite: ct.IsFavorite,
	}
}
