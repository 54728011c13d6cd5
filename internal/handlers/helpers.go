package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cardhub/internal/apperrors"
	"cardhub/internal/logger"
	"cardhub/internal/models"
)

// ErrorBody is the error envelope of every failed API call.
type ErrorBody struct {
	Code    apperrors.Code `json:"code" example:"bad_request"`
	Message string         `json:"message"`
	Details []string       `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.NewNop()
	}
	return log
}

func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		requestLog(c, log).Error("[http][error] request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, ErrorResponse{Error: ErrorBody{
		Code:    apperrors.CodeOf(err),
		Message: apperrors.PublicMessage(err),
		Details: apperrors.DetailsOf(err),
	}})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{Code: apperrors.CodeBadRequest, Message: message}})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// parseActive reads ?active=true|false. Absent or empty means both states.
func parseActive(c *gin.Context) (*bool, error) {
	raw := strings.TrimSpace(c.Query("active"))
	if raw == "" || strings.EqualFold(raw, "null") {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Newf(apperrors.CodeBadRequest, "invalid active filter %q", raw)
	}
	return &v, nil
}

func parseDetails(c *gin.Context, kind models.Kind) (models.DetailOptions, error) {
	return models.ParseDetails(kind, c.QueryArray("details"))
}

func parseOptionalID(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Newf(apperrors.CodeBadRequest, "invalid %s filter %q", key, raw)
	}
	return &v, nil
}

// requestLog scopes log to the request id and, when authenticated, the
// caller's user and role.
func requestLog(c *gin.Context, log *logger.Logger) *logger.Logger {
	kv := []interface{}{"request_id", c.GetString("request_id")}
	if _, ok := c.Get("user_id"); ok {
		kv = append(kv, "user_id", c.GetInt("user_id"), "role_id", c.GetInt("role_id"))
	}
	return log.With(kv...)
}
