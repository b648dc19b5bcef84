package domain

// PhoneNumber is a single number attached to a contact. It has no identity
// of its own; the repository keys add/delete mutations by contact id plus
// the number's string value.
type PhoneNumber struct {
	Number string `json:"number"`
}

// Contact represents a person record in the external contact repository.
// ID is assigned by the repository on creation and never reassigned.
// IsFavorite is a client-only overlay flag; it is never sent to the
// repository and is stamped from the local favorites store on read.
type Contact struct {
	ID         int64         `json:"id"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Phones     []PhoneNumber `json:"phones"`
	IsFavorite bool          `json:"isFavorite"`
}

// PhoneNumbers extracts the raw number strings in list order.
func (c *Contact) PhoneNumbers() []string {
	numbers := make([]string, len(c.Phones))
	for i, p := range c.Phones {
		numbers[i] = p.Number
	}
	return numbers
}
