package protocols

import (
	"github.com/Masterminds/semver/v3"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/go-playground/validator/v10"
)

// identity is the part of a protocol record that decides whether it belongs to the family.
type identity struct {
	ID      string `validate:"required,eq=sds-protocol"`
	Version string `validate:"required,semver"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
		_, err := semver.NewVersion(fl.Field().String())

		return err == nil
	})
	if err != nil {
		panic(err)
	}

	return v
}

// IsValidProtocol reports whether candidate is a protocol record of the sds-protocol family
// with a semantic version. Records may be protocol values or decoded JSON objects; any other
// shape is simply not valid.
func IsValidProtocol(candidate any) bool {
	var id identity

	switch p := candidate.(type) {
	case models.Protocol:
		id = identity{ID: p.ID, Version: p.Version}
	case *models.Protocol:
		if p == nil {
			return false
		}

		id = identity{ID: p.ID, Version: p.Version}
	case map[string]any:
		pid, ok := p["id"].(string)
		if !ok {
			return false
		}

		version, ok := p["version"].(string)
		if !ok {
			return false
		}

		id = identity{ID: pid, Version: version}
	default:
		return false
	}

	return validate.Struct(id) == nil
}
