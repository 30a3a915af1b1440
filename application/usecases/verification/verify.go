// Package verification_usecases runs a full verification attempt: document,
// selfie and declared fields in, one policy decision out.
package verification_usecases

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	"ekyc.io/application/policy"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/biometric"
	biometricTypes "ekyc.io/infrastructure/biometric/types"
	"ekyc.io/infrastructure/layout"
	"ekyc.io/infrastructure/logger"
	"ekyc.io/infrastructure/ocr"
	"ekyc.io/infrastructure/workerpool"
)

const (
	CheckFaceMatch  = "face_match"
	CheckLiveness   = "liveness"
	CheckFrontOCR   = "front_ocr"
	CheckBackOCR    = "back_ocr"
	noSelfieReason  = "no selfie supplied"
	noMatcherReason = "face matcher unavailable"
)

type Input struct {
	AttemptID    string
	DocumentType authenticity.DocumentType
	Front        image.Image
	Back         image.Image
	Selfie       image.Image
	Declared     fieldcompare.Fields
}

type Result struct {
	AttemptID     string                         `json:"attempt_id"`
	DocumentType  authenticity.DocumentType      `json:"document_type"`
	Decision      policy.Decision                `json:"decision"`
	TotalScore    float64                        `json:"total_score"`
	MaxScore      float64                        `json:"max_score"`
	ConfigVersion int64                          `json:"config_version"`
	Scores        map[string]float64             `json:"scores"`
	Reasons       []string                       `json:"reasons"`
	Policy        policy.Result                  `json:"policy"`
	Document      authenticity.DocumentResult    `json:"document"`
	Liveness      *liveness.Verdict              `json:"liveness,omitempty"`
	FaceMatch     *biometricTypes.FaceComparison `json:"face_match,omitempty"`
	Fields        fieldcompare.Report            `json:"field_comparison"`
	Extracted     fieldcompare.Fields            `json:"extracted_fields"`
	Skipped       map[string]string              `json:"skipped"`
	ProcessedAt   time.Time                      `json:"processed_at"`
}

type Verifier struct {
	Pool      *workerpool.Pool
	Documents *authenticity.Engine
	Liveness  *liveness.Engine
	Fields    *fieldcompare.Engine
	Policy    *policy.Engine
	// Faces may be nil; face matching is then skipped.
	Faces     biometricTypes.FaceEmbedder
	Extractor *Extractor
	// Recorder may be nil; nothing is persisted then.
	Recorder *Recorder
	Now      func() time.Time
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now().UTC()
	}
	return time.Now().UTC()
}

type skipSet struct {
	mu      sync.Mutex
	reasons map[string]string
}

func (s *skipSet) add(check string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons[check] = reason
}

// Verify fans the independent checks out, then compares fields and evaluates
// the policy once every check has finished. Only input errors are returned.
func (v *Verifier) Verify(ctx context.Context, in Input) (*Result, error) {
	if in.Front == nil || in.Front.Bounds().Empty() {
		return nil, apperrors.NewInputError("front", "front image is required")
	}
	if in.DocumentType == "" {
		in.DocumentType = authenticity.YemenNationalID
		if fieldcompare.DetectIDType(in.Declared) == fieldcompare.IDTypePassport {
			in.DocumentType = authenticity.YemenPassport
		}
	}
	if !in.DocumentType.Valid() {
		return nil, apperrors.NewInputError("document_type", "unsupported document type")
	}
	if in.DocumentType == authenticity.YemenPassport {
		in.Back = nil
	}
	if in.Back != nil && in.Back.Bounds().Empty() {
		in.Back = nil
	}
	if in.AttemptID == "" {
		in.AttemptID = utils.GenerateAttemptID()
	}

	skipped := &skipSet{reasons: map[string]string{}}
	var (
		wg       sync.WaitGroup
		document authenticity.DocumentResult
		docErr   error
		face     *biometricTypes.FaceComparison
		verdict  *liveness.Verdict
		liveErr  error
		front    Extraction
		back     *Extraction
	)
	frontModel, backModel := layout.ModelIDFront, layout.ModelIDBack
	if in.DocumentType == authenticity.YemenPassport {
		frontModel = layout.ModelPassport
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		document, docErr = v.Documents.EvaluateDocument(ctx, in.Front, in.Back, in.DocumentType)
	}()
	go func() {
		defer wg.Done()
		face, verdict, liveErr = v.selfieChecks(ctx, in, skipped)
	}()
	go func() {
		defer wg.Done()
		front = v.Extractor.Extract(ctx, in.Front, frontModel)
		if front.Skipped != nil {
			skipped.add(CheckFrontOCR, *front.Skipped)
		}
	}()
	if in.Back != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			extraction := v.Extractor.Extract(ctx, in.Back, backModel)
			if extraction.Skipped != nil {
				skipped.add(CheckBackOCR, *extraction.Skipped)
			}
			back = &extraction
		}()
	}
	wg.Wait()

	if docErr != nil {
		return nil, docErr
	}
	if liveErr != nil {
		return nil, liveErr
	}

	lines := append([]ocr.Line{}, front.Lines...)
	if back != nil {
		lines = append(lines, back.Lines...)
	}
	confidence := ocr.MeanConfidence(lines)
	extracted := Merge(front, back)
	report := v.Fields.CompareFields(ctx, in.Declared, extracted, confidence)

	scores := NormalisedScores(Signals{
		DocumentType:  in.DocumentType,
		Document:      document,
		OCRConfidence: confidence,
		Front:         front,
		Back:          back,
		Face:          face,
		Liveness:      verdict,
		Fields:        report,
	})
	decision, _ := v.Policy.Evaluate(ctx, policy.ScoresFromKeys(scores))

	result := &Result{
		AttemptID:     in.AttemptID,
		DocumentType:  in.DocumentType,
		Decision:      decision.Decision,
		TotalScore:    decision.TotalScore,
		MaxScore:      decision.MaxScore,
		ConfigVersion: decision.ConfigVersion,
		Scores:        scores,
		Reasons:       decision.Reasons,
		Policy:        decision,
		Document:      document,
		Liveness:      verdict,
		FaceMatch:     face,
		Fields:        report,
		Extracted:     extracted,
		Skipped:       skipped.reasons,
		ProcessedAt:   v.now(),
	}
	logger.Info("verification attempt decided", logger.LoggerOptions{
		Key:  "attemptID",
		Data: result.AttemptID,
	}, logger.LoggerOptions{
		Key:  "decision",
		Data: result.Decision,
	}, logger.LoggerOptions{
		Key:  "totalScore",
		Data: result.TotalScore,
	})
	v.Recorder.Record(result, in)
	return result, nil
}

// selfieChecks matches the selfie against the document portrait, then runs
// liveness with the detected face and the similarity.
func (v *Verifier) selfieChecks(ctx context.Context, in Input, skipped *skipSet) (*biometricTypes.FaceComparison, *liveness.Verdict, error) {
	if in.Selfie == nil || in.Selfie.Bounds().Empty() {
		skipped.add(CheckFaceMatch, noSelfieReason)
		skipped.add(CheckLiveness, noSelfieReason)
		return nil, nil, nil
	}

	var face *biometricTypes.FaceComparison
	if v.Faces == nil {
		skipped.add(CheckFaceMatch, noMatcherReason)
	} else {
		cmp, err := workerpool.Submit(ctx, v.Pool, CheckFaceMatch, func(callCtx context.Context) (biometricTypes.FaceComparison, error) {
			return biometric.CompareFaces(callCtx, v.Faces, in.Front, in.Selfie)
		})
		if err != nil {
			reason := err.Error()
			var timeout *apperrors.CheckTimeout
			if errors.As(err, &timeout) {
				cmp = biometricTypes.FaceComparison{Error: &reason}
				face = &cmp
			} else {
				skipped.add(CheckFaceMatch, reason)
			}
		} else {
			face = &cmp
		}
	}

	opts := liveness.Options{}
	if face != nil {
		opts.FaceRegion = face.SelfieFace
		if face.DocumentFaceFound && face.SelfieFaceFound {
			opts.FaceSimilarity = utils.GetFloat64Pointer(face.Similarity)
		}
	}
	verdict, err := v.Liveness.Evaluate(ctx, in.Selfie, opts)
	if err != nil {
		return face, nil, err
	}
	return face, &verdict, nil
}
