package controller

import (
	"errors"
	"net/http"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/controller/dto"
	"ekyc.io/application/interfaces"
	"ekyc.io/application/services"
	"ekyc.io/infrastructure/logger"
	server_response "ekyc.io/infrastructure/serverResponse"
	"ekyc.io/infrastructure/validator"
)

func FetchVerificationConfig(ctx *interfaces.ApplicationContext[any]) {
	cfg := services.Policy.LoadConfig(ctx.GetContext())
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification config fetched", cfg, nil, nil)
}

// UpdateVerificationConfig stores a new version built from the current config
// and the submitted components.
func UpdateVerificationConfig(ctx *interfaces.ApplicationContext[dto.UpdateVerificationConfigDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	if services.PolicyStore == nil {
		apperrors.ExternalDependencyError(ctx.Ctx, "postgres", "503", errors.New("verification config store is not configured"))
		return
	}
	updatedBy := "admin"
	if ctx.Subject != nil {
		updatedBy = *ctx.Subject
	}
	current := services.Policy.LoadConfig(ctx.GetContext())
	saved, err := services.PolicyStore.SaveConfig(ctx.GetContext(), current.Merge(ctx.Body.Updates()), updatedBy)
	if err != nil {
		if apperrors.IsInputError(err) {
			apperrors.ValidationFailedError(ctx.Ctx, &[]error{err})
			return
		}
		apperrors.ExternalDependencyError(ctx.Ctx, "postgres", "500", err)
		return
	}
	logger.Info("verification config updated", logger.LoggerOptions{
		Key:  "version",
		Data: saved.Version,
	}, logger.LoggerOptions{
		Key:  "updatedBy",
		Data: updatedBy,
	})
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification config updated", saved, nil, nil)
}
