package validator

import (
	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/policy"
	"github.com/go-playground/validator/v10"
)

func validateDocumentSide(fl validator.FieldLevel) bool {
	switch authenticity.Side(fl.Field().String()) {
	case authenticity.SideFront, authenticity.SideBack, authenticity.SidePassport:
		return true
	}
	return false
}

func validateIDType(fl validator.FieldLevel) bool {
	return authenticity.DocumentType(fl.Field().String()).Valid()
}

func validateGender(fl validator.FieldLevel) bool {
	switch fieldcompare.NormalizeGender(fl.Field().String()) {
	case fieldcompare.GenderMale, fieldcompare.GenderFemale:
		return true
	}
	return false
}

func validateComponentName(fl validator.FieldLevel) bool {
	_, ok := policy.ParseComponent(fl.Field().String())
	return ok
}
