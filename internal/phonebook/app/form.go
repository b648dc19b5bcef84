package app

import (
	"regexp"
	"strings"
)

// Messages surfaced to the user by form validation.
const (
	MsgNameSpecialChars   = "Name must not contain special characters"
	MsgRequiredFields     = "Required fields cannot be empty"
	MsgDuplicateContact   = "Contact with that name already exists"
	MsgSomethingWentWrong = "Something went wrong!"
)

// Name fields allow alphanumerics and whitespace only.
var specialCharsRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// FormDraft is the in-memory state of the add/edit contact form. Phones is
// the ordered list of phone input slots; only the first slot is required.
type FormDraft struct {
	FirstName string
	LastName  string
	Phones    []string
}

// ValidationError carries per-field errors plus the summary message shown
// when submission is blocked. It never reaches the repository layer.
type ValidationError struct {
	FirstNameError string
	LastNameError  string
	Message        string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.FirstNameError != "" {
		return e.FirstNameError
	}
	return e.LastNameError
}

// CheckName is the live per-keystroke rule for a single name field. It
// returns an empty string when the value is acceptable.
func CheckName(value string) string {
	if specialCharsRe.MatchString(value) {
		return MsgNameSpecialChars
	}
	return ""
}

// Validate applies the submit-time rules: both name fields pass the
// character rule, first name, last name and the first phone slot are
// non-empty. A nil result means the draft can be submitted.
func (d *FormDraft) Validate() *ValidationError {
	verr := &ValidationError{
		FirstNameError: CheckName(d.FirstName),
		LastNameError:  CheckName(d.LastName),
	}
	if verr.FirstNameError != "" || verr.LastNameError != "" {
		return verr
	}

	if strings.TrimSpace(d.FirstName) == "" ||
		strings.TrimSpace(d.LastName) == "" ||
		len(d.Phones) == 0 || strings.TrimSpace(d.Phones[0]) == "" {
		verr.Message = MsgRequiredFields
		return verr
	}
	return nil
}

// SubmittedPhones returns the phone numbers that take part in the mutation:
// slot order preserved, blank extra slots dropped. Duplicates pass through
// untouched; the repository stores whatever was submitted.
func (d *FormDraft) SubmittedPhones() []string {
	phones := make([]string, 0, len(d.Phones))
	for _, number := range d.Phones {
		if strings.TrimSpace(number) == "" {
			continue
		}
		phones = append(phones, number)
	}
	return phones
}
