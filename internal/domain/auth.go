package domain

// Identity is the {id, email} pair encoded in a validated token. It is a
// snapshot taken at issuance, not a live view of the user row.
type Identity struct {
	ID    string
	Email string
}
