package common

import "github.com/google/uuid"

// ParseID parses a resource identifier. Anything that is not a well-formed UUID
// cannot name a stored record, so it is reported as ErrRecordNotFound.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrRecordNotFound
	}

	return id, nil
}
