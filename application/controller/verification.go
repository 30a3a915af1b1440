package controller

import (
	"net/http"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/authenticity"
	"ekyc.io/application/constants"
	"ekyc.io/application/controller/dto"
	"ekyc.io/application/interfaces"
	"ekyc.io/application/policy"
	"ekyc.io/application/services"
	verification_usecases "ekyc.io/application/usecases/verification"
	"ekyc.io/infrastructure/imageloader"
	server_response "ekyc.io/infrastructure/serverResponse"
	"ekyc.io/infrastructure/validator"
)

func decisionResponseCode(result *verification_usecases.Result) *uint {
	if result.Policy.Bypassed {
		return &constants.VERIFICATION_BYPASSED
	}
	switch result.Decision {
	case policy.Approved:
		return &constants.VERIFICATION_APPROVED
	case policy.ManualReview:
		return &constants.VERIFICATION_MANUAL_REVIEW
	}
	return &constants.VERIFICATION_REJECTED
}

// Verify runs a full attempt and answers with the decision. Persistence
// happens after the response is written.
func Verify(ctx *interfaces.ApplicationContext[dto.VerificationDTO]) {
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
	selfie, err := imageloader.Optional("selfie", ctx.Body.Selfie)
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	input := verification_usecases.Input{
		Front:    front,
		Back:     back,
		Selfie:   selfie,
		Declared: ctx.Body.Declared.ToFields(),
	}
	if ctx.Body.DocumentType != nil {
		input.DocumentType = authenticity.DocumentType(*ctx.Body.DocumentType)
	}
	result, err := services.Verifier.Verify(ctx.GetContext(), input)
	if err != nil {
		apperrors.ErrorFromKind(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification completed", result, nil, decisionResponseCode(result))
}

func FetchVerification(ctx *interfaces.ApplicationContext[any]) {
	id := ctx.GetParam("id")
	if id == nil {
		apperrors.ClientError(ctx.Ctx, "provide an attempt id", nil, nil)
		return
	}
	result, err := services.Recorder.Find(ctx.GetContext(), *id)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if result == nil {
		apperrors.NotFoundError(ctx.Ctx, "verification attempt not found")
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification fetched", result, nil, decisionResponseCode(result))
}

func VerificationStats(ctx *interfaces.ApplicationContext[any]) {
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification stats fetched", dto.VerificationStatsResponse{
		Decisions: services.Recorder.DecisionCounts(ctx.GetContext()),
	}, nil, nil)
}
