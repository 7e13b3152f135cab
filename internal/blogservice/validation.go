package blogservice

import (
	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(v.NotBlank(title), "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, 200), "title", "must not be more than 200 characters long")
}

func validateDescription(v *common.Validator, description string) {
	v.Check(v.NotBlank(description), "description", "must be provided")
}

func validateID(v *common.Validator, id uuid.UUID, name string) {
	v.Check(id != uuid.Nil, name, "must be provided")
}

func validatePage(v *common.Validator, limit, offset *int) {
	if limit != nil {
		v.Check(*limit > 0, "limit", "must be greater than zero")
	}

	if offset != nil {
		v.Check(*offset >= 0, "offset", "must not be negative")
	}
}
