package adaptor

import (
	"net/http"

	"pizzeria-backend/pkg/apperror"
	"pizzeria-backend/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps an error kind to its HTTP status. Errors without
// a kind are logged and reported as a generic 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.Internal {
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed",
		zap.String("kind", appErr.Kind.String()),
		zap.String("error", appErr.Message),
		zap.String("operation", operation))

	switch appErr.Kind {
	case apperror.NotFound:
		utils.ResponseNotFound(w, appErr.Message)

	case apperror.AlreadyExists:
		utils.ResponseConflict(w, appErr.Message, fieldErrors(appErr))

	case apperror.InvalidInput:
		utils.ResponseBadRequest(w, appErr.Message, fieldErrors(appErr))

	case apperror.Unauthorized:
		utils.ResponseUnauthorized(w, appErr.Message)

	case apperror.Forbidden:
		utils.ResponseForbidden(w, appErr.Message)

	case apperror.EmptyBasket:
		utils.ResponseUnprocessable(w, appErr.Message)

	case apperror.Conflict:
		utils.ResponseConflict(w, appErr.Message, nil)

	default:
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func fieldErrors(appErr *apperror.Error) map[string]string {
	if len(appErr.Fields) > 0 {
		return appErr.Fields
	}
	if appErr.Field != "" {
		return map[string]string{appErr.Field: appErr.Message}
	}
	return nil
}
