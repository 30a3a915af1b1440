package dto

type LivenessDTO struct {
	Image            string   `json:"image" validate:"required"`                                    // base64 selfie
	SpoofProbability *float64 `json:"spoof_probability,omitempty" validate:"omitempty,gte=0,lte=1"` // precomputed by the client's model
	FaceSimilarity   *float64 `json:"face_similarity,omitempty" validate:"omitempty,gte=0,lte=1"`   // similarity to the document portrait
}

type DocumentEvaluationDTO struct {
	DocumentType string  `json:"document_type" validate:"required,id_type"`
	Front        string  `json:"front" validate:"required"`
	Back         *string `json:"back,omitempty"`
}

type FieldComparisonDTO struct {
	Declared   DeclaredFieldsDTO `json:"declared"`
	Extracted  DeclaredFieldsDTO `json:"extracted"`
	Confidence *float64          `json:"ocr_confidence,omitempty" validate:"omitempty,gte=0,lte=1"` // defaults to 1
}
