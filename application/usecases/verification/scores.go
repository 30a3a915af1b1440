package verification_usecases

import (
	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	biometricTypes "ekyc.io/infrastructure/biometric/types"
)

// Score keys fed to the policy.
const (
	ScoreDocAuthenticity = "doc_authenticity"
	ScoreDocQuality      = "doc_quality"
	ScoreOCRConfidence   = "ocr_confidence"
	ScoreFrontBackMatch  = "front_back_match"
	ScoreFaceMatch       = "face_match"
	ScoreLiveness        = "liveness"
	ScoreIDNumberMatch   = "id_number_match"
	ScoreNameMatch       = "name_match"
	ScoreDOB             = "dob"
	ScoreIssuance        = "issuance"
	ScoreExpiry          = "expiry"
	ScoreGender          = "gender"
)

// Signals are the upstream outcomes the scores are derived from. Nil members
// were skipped and score 0.
type Signals struct {
	DocumentType  authenticity.DocumentType
	Document      authenticity.DocumentResult
	OCRConfidence float64
	Front         Extraction
	Back          *Extraction
	Face          *biometricTypes.FaceComparison
	Liveness      *liveness.Verdict
	Fields        fieldcompare.Report
}

// FrontBackMatch is 1 when the back of a national ID carries no readable
// identifier or the same one as the front. Passports and missing backs score 0.
func FrontBackMatch(docType authenticity.DocumentType, front Extraction, back *Extraction) float64 {
	if docType != authenticity.YemenNationalID || back == nil || back.Skipped != nil {
		return 0
	}
	backID := back.Fields.Get(fieldcompare.FieldIDNumber)
	if backID == nil {
		return 1
	}
	frontID := front.Fields.Get(fieldcompare.FieldIDNumber)
	if frontID != nil && *frontID == *backID {
		return 1
	}
	return 0
}

func fieldScore(report fieldcompare.Report, names ...string) (float64, bool) {
	best, found := 0.0, false
	for _, name := range names {
		if r := report.Field(name); r != nil {
			if !found || r.Score > best {
				best = r.Score
			}
			found = true
		}
	}
	return best, found
}

// NormalisedScores maps every signal onto the 0-1 keys the policy reads.
func NormalisedScores(s Signals) map[string]float64 {
	scores := map[string]float64{
		ScoreDocAuthenticity: s.Document.Authenticity,
		ScoreDocQuality:      s.Document.Quality,
		ScoreOCRConfidence:   s.OCRConfidence,
		ScoreFrontBackMatch:  FrontBackMatch(s.DocumentType, s.Front, s.Back),
		ScoreFaceMatch:       0,
		ScoreLiveness:        0,
	}
	if s.Face != nil {
		scores[ScoreFaceMatch] = s.Face.Similarity
	}
	if s.Liveness != nil && s.Liveness.IsLive {
		scores[ScoreLiveness] = s.Liveness.Confidence
	}

	fields := map[string][]string{
		ScoreIDNumberMatch: {fieldcompare.FieldIDNumber},
		ScoreNameMatch:     {fieldcompare.FieldNameArabic, fieldcompare.FieldNameEnglish},
		ScoreDOB:           {fieldcompare.FieldDateOfBirth},
		ScoreIssuance:      {fieldcompare.FieldIssuanceDate},
		ScoreExpiry:        {fieldcompare.FieldExpiryDate},
		ScoreGender:        {fieldcompare.FieldGender},
	}
	if s.DocumentType == authenticity.YemenPassport {
		fields[ScoreIDNumberMatch] = []string{fieldcompare.FieldPassportNumber}
	}
	for key, names := range fields {
		if score, ok := fieldScore(s.Fields, names...); ok {
			scores[key] = score
		}
	}
	return scores
}
