package fieldcompare

import "ekyc.io/application/placematch"

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityWeights weight the analytics score. They never drive a decision.
var SeverityWeights = map[Severity]float64{
	SeverityHigh:   0.6,
	SeverityMedium: 0.3,
	SeverityLow:    0.1,
}

type MatchingType string

const (
	MatchExact MatchingType = "exact"
	MatchDate  MatchingType = "date"
	MatchFuzzy MatchingType = "fuzzy"
	MatchToken MatchingType = "token"
)

type Decision string

const (
	DecisionPass         Decision = "pass"
	DecisionManualReview Decision = "manual_review"
	DecisionReject       Decision = "reject"
)

type OverallDecision string

const (
	OverallApproved     OverallDecision = "approved"
	OverallManualReview OverallDecision = "manual_review"
	OverallRejected     OverallDecision = "rejected"
)

type IDType string

const (
	IDTypeNationalID IDType = "yemen_national_id"
	IDTypePassport   IDType = "yemen_passport"
)

const (
	FieldIDNumber       = "id_number"
	FieldPassportNumber = "passport_number"
	FieldNameArabic     = "name_arabic"
	FieldNameEnglish    = "name_english"
	FieldDateOfBirth    = "date_of_birth"
	FieldGender         = "gender"
	FieldPlaceOfBirth   = "place_of_birth"
	FieldIssuanceDate   = "issuance_date"
	FieldExpiryDate     = "expiry_date"
)

// FieldConfig drives how one field is compared and decided.
type FieldConfig struct {
	Name            string       `json:"name" mapstructure:"name"`
	Severity        Severity     `json:"severity" mapstructure:"severity"`
	MatchingType    MatchingType `json:"matching_type" mapstructure:"matching_type"`
	PassThreshold   float64      `json:"pass_threshold" mapstructure:"pass_threshold"`
	ManualThreshold float64      `json:"manual_threshold" mapstructure:"manual_threshold"`
	ToleranceDays   int          `json:"tolerance_days" mapstructure:"tolerance_days"`
	Enabled         bool         `json:"enabled" mapstructure:"enabled"`
}

// DefaultFields lists the compared fields in report order.
func DefaultFields() []FieldConfig {
	return []FieldConfig{
		{Name: FieldIDNumber, Severity: SeverityHigh, MatchingType: MatchExact, PassThreshold: 1, ManualThreshold: 1, Enabled: true},
		{Name: FieldPassportNumber, Severity: SeverityHigh, MatchingType: MatchExact, PassThreshold: 1, ManualThreshold: 1, Enabled: true},
		{Name: FieldNameArabic, Severity: SeverityHigh, MatchingType: MatchFuzzy, PassThreshold: 0.90, ManualThreshold: 0.70, Enabled: true},
		{Name: FieldNameEnglish, Severity: SeverityMedium, MatchingType: MatchFuzzy, PassThreshold: 0.85, ManualThreshold: 0.65, Enabled: true},
		{Name: FieldDateOfBirth, Severity: SeverityHigh, MatchingType: MatchDate, PassThreshold: 1, ManualThreshold: 0.5, ToleranceDays: 1, Enabled: true},
		{Name: FieldGender, Severity: SeverityHigh, MatchingType: MatchExact, PassThreshold: 1, ManualThreshold: 1, Enabled: true},
		{Name: FieldPlaceOfBirth, Severity: SeverityLow, MatchingType: MatchToken, PassThreshold: 0.70, ManualThreshold: 0.40, Enabled: true},
		{Name: FieldIssuanceDate, Severity: SeverityMedium, MatchingType: MatchDate, PassThreshold: 1, ManualThreshold: 0.5, ToleranceDays: 1, Enabled: true},
		{Name: FieldExpiryDate, Severity: SeverityMedium, MatchingType: MatchDate, PassThreshold: 1, ManualThreshold: 0.5, ToleranceDays: 1, Enabled: true},
	}
}

// Fields carries one side of the comparison, declared by the user or extracted
// from the document.
type Fields struct {
	IDNumber       *string `json:"id_number,omitempty" bson:"idNumber,omitempty"`
	PassportNumber *string `json:"passport_number,omitempty" bson:"passportNumber,omitempty"`
	NameArabic     *string `json:"name_arabic,omitempty" bson:"nameArabic,omitempty"`
	NameEnglish    *string `json:"name_english,omitempty" bson:"nameEnglish,omitempty"`
	DateOfBirth    *string `json:"date_of_birth,omitempty" bson:"dateOfBirth,omitempty"`
	Gender         *string `json:"gender,omitempty" bson:"gender,omitempty"`
	PlaceOfBirth   *string `json:"place_of_birth,omitempty" bson:"placeOfBirth,omitempty"`
	IssuanceDate   *string `json:"issuance_date,omitempty" bson:"issuanceDate,omitempty"`
	ExpiryDate     *string `json:"expiry_date,omitempty" bson:"expiryDate,omitempty"`
}

// Get returns the named field, nil for blanks and unknown names.
func (f Fields) Get(name string) *string {
	var v *string
	switch name {
	case FieldIDNumber:
		v = f.IDNumber
	case FieldPassportNumber:
		v = f.PassportNumber
	case FieldNameArabic:
		v = f.NameArabic
	case FieldNameEnglish:
		v = f.NameEnglish
	case FieldDateOfBirth:
		v = f.DateOfBirth
	case FieldGender:
		v = f.Gender
	case FieldPlaceOfBirth:
		v = f.PlaceOfBirth
	case FieldIssuanceDate:
		v = f.IssuanceDate
	case FieldExpiryDate:
		v = f.ExpiryDate
	}
	if v == nil || len(*v) == 0 {
		return nil
	}
	return v
}

// Set stores value under name. Unknown names are ignored.
func (f *Fields) Set(name string, value *string) {
	switch name {
	case FieldIDNumber:
		f.IDNumber = value
	case FieldPassportNumber:
		f.PassportNumber = value
	case FieldNameArabic:
		f.NameArabic = value
	case FieldNameEnglish:
		f.NameEnglish = value
	case FieldDateOfBirth:
		f.DateOfBirth = value
	case FieldGender:
		f.Gender = value
	case FieldPlaceOfBirth:
		f.PlaceOfBirth = value
	case FieldIssuanceDate:
		f.IssuanceDate = value
	case FieldExpiryDate:
		f.ExpiryDate = value
	}
}

type FieldResult struct {
	FieldName      string             `json:"field_name" bson:"fieldName"`
	Severity       Severity           `json:"severity" bson:"severity"`
	MatchingType   MatchingType       `json:"matching_type" bson:"matchingType"`
	Match          bool               `json:"match" bson:"match"`
	Score          float64            `json:"score" bson:"score"`
	Decision       Decision           `json:"decision" bson:"decision"`
	Reason         string             `json:"reason" bson:"reason"`
	FraudDetected  bool               `json:"fraud_detected" bson:"fraudDetected"`
	FraudReason    *string            `json:"fraud_reason,omitempty" bson:"fraudReason,omitempty"`
	DeclaredValue  *string            `json:"declared_value,omitempty" bson:"declaredValue,omitempty"`
	ExtractedValue *string            `json:"extracted_value,omitempty" bson:"extractedValue,omitempty"`
	DaysDiff       *int               `json:"days_diff,omitempty" bson:"daysDiff,omitempty"`
	ExpectedGender *string            `json:"expected_gender,omitempty" bson:"expectedGender,omitempty"`
	Place          *placematch.Result `json:"place,omitempty" bson:"place,omitempty"`
}

type Summary struct {
	Total  int `json:"total_fields" bson:"total"`
	Passed int `json:"passed_fields" bson:"passed"`
	Review int `json:"review_fields" bson:"review"`
	Failed int `json:"failed_fields" bson:"failed"`
}

type Report struct {
	IDType          IDType          `json:"id_type" bson:"idType"`
	OverallDecision OverallDecision `json:"overall_decision" bson:"overallDecision"`
	// OverallScore is the severity-weighted mean, reported for analytics.
	OverallScore    float64       `json:"overall_score" bson:"overallScore"`
	Fields          []FieldResult `json:"field_comparisons" bson:"fields"`
	Summary         Summary       `json:"summary" bson:"summary"`
	Recommendations []string      `json:"recommendations" bson:"recommendations"`
}

// Field returns the result for name when it was compared.
func (r Report) Field(name string) *FieldResult {
	for i := range r.Fields {
		if r.Fields[i].FieldName == name {
			return &r.Fields[i]
		}
	}
	return nil
}
