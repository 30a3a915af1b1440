package entities

import (
	"time"

	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	"ekyc.io/application/policy"
	"ekyc.io/application/utils"
	biometricTypes "ekyc.io/infrastructure/biometric/types"
)

// EvidenceRef points at an archived image for manual review.
type EvidenceRef struct {
	Kind     string `bson:"kind" json:"kind"`
	BlobName string `bson:"blobName" json:"blobName"`
}

// VerificationAttempt is the full record of one verification, stored for
// manual review next to the policy audit row.
type VerificationAttempt struct {
	AttemptID     string                         `bson:"attemptID" json:"attemptID"`
	DocumentType  authenticity.DocumentType      `bson:"documentType" json:"documentType"`
	Decision      policy.Decision                `bson:"decision" json:"decision"`
	TotalScore    float64                        `bson:"totalScore" json:"totalScore"`
	ConfigVersion int64                          `bson:"configVersion" json:"configVersion"`
	Scores        map[string]float64             `bson:"scores" json:"scores"`
	Reasons       []string                       `bson:"reasons" json:"reasons"`
	Document      *authenticity.DocumentResult   `bson:"document" json:"document"`
	Liveness      *liveness.Verdict              `bson:"liveness" json:"liveness"`
	FaceMatch     *biometricTypes.FaceComparison `bson:"faceMatch" json:"faceMatch"`
	Fields        *fieldcompare.Report           `bson:"fields" json:"fields"`
	Declared      fieldcompare.Fields            `bson:"declared" json:"declared"`
	Extracted     fieldcompare.Fields            `bson:"extracted" json:"extracted"`
	Evidence      []EvidenceRef                  `bson:"evidence" json:"evidence"`

	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt" json:"deletedAt"`
}

func (model VerificationAttempt) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	model.UpdatedAt = now
	return &model
}
