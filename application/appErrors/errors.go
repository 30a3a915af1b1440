package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"ekyc.io/application/constants"
	"ekyc.io/infrastructure/logger"
	server_response "ekyc.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, message, nil, nil, nil)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "Payload validation failed 🙄", nil, *errMessages, nil)
}

func AuthenticationError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusUnauthorized, message, nil, nil, nil)
}

func ExternalDependencyError(ctx interface{}, serviceName string, statusCode string, err error) {
	logger.Error(err.Error(), logger.LoggerOptions{
		Key: fmt.Sprintf("error with %s. status code %s", serviceName, statusCode),
	})
	server_response.Responder.Respond(ctx, http.StatusServiceUnavailable,
		"Our analysis service is temporarily down 😢. Please check back later.", nil, nil, &constants.COLLABORATOR_UNAVAILABLE)
}

func ErrorProcessingPayload(ctx interface{}) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, "Abnormal payload passed 🤨", nil, nil, nil)
}

func FatalServerError(ctx interface{}, err error) {
	logger.Error("fatal server error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusInternalServerError,
		"Something went wrong on our side 😢. Our team is working to fix it. Please check back later.", nil, nil, nil)
}

func CustomError(ctx interface{}, msg string, responseCode *uint) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, nil, responseCode)
}

func ClientError(ctx interface{}, msg string, errs []error, responseCode *uint) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, errs, responseCode)
}

// ErrorFromKind responds according to the error taxonomy. Input errors reject
// the request, unavailable collaborators and timeouts map to 503 and 504, and
// everything else is a server error.
func ErrorFromKind(ctx interface{}, err error) {
	var input *InputError
	var unavailable *CollaboratorUnavailable
	var timeout *CheckTimeout
	switch {
	case errors.As(err, &input):
		server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "Invalid verification input 🤨", nil, []error{input}, &constants.INVALID_VERIFICATION_INPUT)
	case errors.As(err, &unavailable):
		ExternalDependencyError(ctx, unavailable.Collaborator, "503", err)
	case errors.As(err, &timeout):
		server_response.Responder.Respond(ctx, http.StatusGatewayTimeout, fmt.Sprintf("%s took too long", timeout.Check), nil, nil, nil)
	default:
		FatalServerError(ctx, err)
	}
}
