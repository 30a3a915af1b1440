package dto

import (
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/policy"
)

// DeclaredFieldsDTO is what the user typed into the onboarding form.
type DeclaredFieldsDTO struct {
	IDNumber       *string `json:"id_number,omitempty" validate:"omitempty,numeric,min=8,max=20"`
	PassportNumber *string `json:"passport_number,omitempty" validate:"omitempty,alphanum,max=12"`
	NameArabic     *string `json:"name_arabic,omitempty" validate:"omitempty,max=200"`
	NameEnglish    *string `json:"name_english,omitempty" validate:"omitempty,max=200"`
	DateOfBirth    *string `json:"date_of_birth,omitempty" validate:"omitempty,max=32"`
	Gender         *string `json:"gender,omitempty" validate:"omitempty,gender_value"`
	PlaceOfBirth   *string `json:"place_of_birth,omitempty" validate:"omitempty,max=200"`
	IssuanceDate   *string `json:"issuance_date,omitempty" validate:"omitempty,max=32"`
	ExpiryDate     *string `json:"expiry_date,omitempty" validate:"omitempty,max=32"`
}

func (d DeclaredFieldsDTO) ToFields() fieldcompare.Fields {
	return fieldcompare.Fields{
		IDNumber:       d.IDNumber,
		PassportNumber: d.PassportNumber,
		NameArabic:     d.NameArabic,
		NameEnglish:    d.NameEnglish,
		DateOfBirth:    d.DateOfBirth,
		Gender:         d.Gender,
		PlaceOfBirth:   d.PlaceOfBirth,
		IssuanceDate:   d.IssuanceDate,
		ExpiryDate:     d.ExpiryDate,
	}
}

type VerificationDTO struct {
	DocumentType *string           `json:"document_type,omitempty" validate:"omitempty,id_type"` // inferred from the declared fields when empty
	Front        string            `json:"front" validate:"required"`                            // base64 image, data URIs accepted
	Back         *string           `json:"back,omitempty"`                                       // ignored for passports
	Selfie       *string           `json:"selfie,omitempty"`
	Declared     DeclaredFieldsDTO `json:"declared"`
}

type VerificationStatsResponse struct {
	Decisions map[policy.Decision]int64 `json:"decisions"`
}
