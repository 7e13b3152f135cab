package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	valid := uuid.New()

	testCases := []struct {
		name    string
		input   string
		want    uuid.UUID
		wantErr error
	}{
		{name: "valid id", input: valid.String(), want: valid},
		{name: "object id", input: "64b7f0c2e13a4c0012345678", want: uuid.Nil, wantErr: ErrRecordNotFound},
		{name: "empty", input: "", want: uuid.Nil, wantErr: ErrRecordNotFound},
		{name: "garbage", input: "not-an-id", want: uuid.Nil, wantErr: ErrRecordNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseID(tc.input)
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.want, id)
		})
	}
}
