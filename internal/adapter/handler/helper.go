package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/internal/adapter/dto/common"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/capture-stitcher/internal/usecase/errors"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return HandleStatus(logger, c, http.StatusOK, data)
}

// HandleStatus writes a standardized success response with a custom status code
func HandleStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(err)

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := common.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
	}

	return c.JSON(appErr.HTTPCode, body)
}

// ErrorHandler renders errors returned by middleware and handlers
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = HandleError(logger, c, err)
	}
}

// toAppError maps domain and framework errors to AppError
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if stdErrors.As(err, &validationErrs) {
		return errors.ErrInvalidArgument(validationErrs.Error())
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return errors.ErrNotFound("route")
		case http.StatusUnauthorized:
			return errors.ErrUnauthenticated()
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return errors.ErrInvalidPayload()
		}
		return errors.AppError{
			HTTPCode: httpErr.Code,
			Code:     errors.ErrorCode_INTERNAL,
			Message:  http.StatusText(httpErr.Code),
		}
	}

	switch {
	case stdErrors.Is(err, entities.ErrJobNotFound):
		return errors.ErrNotFound("job")
	case stdErrors.Is(err, entities.ErrInvalidMeeting):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrQueueFull):
		return errors.ErrJobQueueFull()
	}

	return errors.ErrInternal(err)
}
