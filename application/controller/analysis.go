package controller

import (
	"net/http"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/authenticity"
	"ekyc.io/application/controller/dto"
	"ekyc.io/application/interfaces"
	"ekyc.io/application/liveness"
	"ekyc.io/application/services"
	"ekyc.io/infrastructure/imageloader"
	server_response "ekyc.io/infrastructure/serverResponse"
	"ekyc.io/infrastructure/validator"
)

// CheckLiveness runs the passive liveness checks on a single selfie.
func CheckLiveness(ctx *interfaces.ApplicationContext[dto.LivenessDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	img, err := imageloader.Base64("image", ctx.Body.Image)
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	verdict, err := services.Liveness.Evaluate(ctx.GetContext(), img, liveness.Options{
		SpoofProbability: ctx.Body.SpoofProbability,
		FaceSimilarity:   ctx.Body.FaceSimilarity,
	})
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "liveness check completed", verdict, nil, nil)
}

func EvaluateDocument(ctx *interfaces.ApplicationContext[dto.DocumentEvaluationDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	front, err := imageloader.Base64("front", ctx.Body.Front)
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	back, err := imageloader.Optional("back", ctx.Body.Back)
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	result, err := services.Documents.EvaluateDocument(ctx.GetContext(), front, back, authenticity.DocumentType(ctx.Body.DocumentType))
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "document evaluated", result, nil, nil)
}

func CompareFields(ctx *interfaces.ApplicationContext[dto.FieldComparisonDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	confidence := 1.0
	if ctx.Body.Confidence != nil {
		confidence = *ctx.Body.Confidence
	}
	report := services.Fields.CompareFields(ctx.GetContext(), ctx.Body.Declared.ToFields(), ctx.Body.Extracted.ToFields(), confidence)
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "fields compared", report, nil, nil)
}
