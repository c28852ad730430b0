package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/pkg/pagination"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code      int           `json:"code"`
	ErrorCode apperror.Code `json:"errorCode"`
	Message   string        `json:"message"`
	Details   interface{}   `json:"details,omitempty"`
	RequestID string        `json:"requestId"`
}

// ErrorHandler renders errors as ErrorBody. Details are only disclosed for
// operational errors; anything else is logged and reported generically.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := translate(err)
		rid := GetRequestID(c)

		body := ErrorBody{
			Code:      appErr.Status,
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			RequestID: rid,
		}
		if appErr.Operational {
			body.Details = appErr.Details
		} else {
			body.Message = apperror.DefaultMessage(apperror.CodeInternal)
			logger.Error().
				Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(appErr.Status)
		} else {
			writeErr = c.JSON(appErr.Status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Str("request_id", rid).Msg("write error response")
		}
	}
}

func translate(err error) *apperror.Error {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.Validation("Validation error", Violations(verrs))
	}

	var perr *pagination.ParamError
	if errors.As(err, &perr) {
		return apperror.New(http.StatusBadRequest, apperror.CodeValidation, err, perr.Error(), []FieldViolation{{
			Field:   perr.Param,
			Rule:    "range",
			Message: perr.Reason,
		}})
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return apperror.Internal(err)
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		return apperror.New(he.Code, apperror.FromStatus(he.Code), err, msg, nil)
	}

	return apperror.Internal(err)
}
