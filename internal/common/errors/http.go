package errors

import "net/http"

// HTTPStatus maps an error code to the status returned by the wizard API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodePayloadInvalid, ErrCodeInvalidRequest, ErrCodeUnsupportedUpload:
		return http.StatusBadRequest
	case ErrCodeFieldLocked, ErrCodeDuplicateSubmission, ErrCodeBusinessRule:
		return http.StatusConflict
	case ErrCodeSessionNotFound, ErrCodeApplicationAbsent, ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized, ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeSubmissionFailed, ErrCodeBackendRequest, ErrCodeExternalService:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeDraftStoreFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
