package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"garage_backend/internal/middleware"
	"garage_backend/internal/services"
	"garage_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

// respondServiceError maps the service error taxonomy onto the API error
// envelope. message is used for the 500 case only.
func respondServiceError(c *gin.Context, err error, message string) {
	var fieldErr *services.FieldError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError

	switch {
	case errors.As(err, &fieldErr):
		apiErr := utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+fieldErr.Message, err.Error())
		utils.RespondWithError(c, apiErr.WithField(fieldErr.Field, fieldErr.Message))
	case errors.As(err, &notFoundErr):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, capitalize(notFoundErr.Resource)+" not found.", err.Error()))
	case errors.As(err, &conflictErr):
		apiErr := utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, conflictErr.Message, err.Error())
		utils.RespondWithError(c, apiErr.WithField(conflictErr.Field, conflictErr.Message))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", err.Error()))
	case errors.Is(err, services.ErrInactiveUser):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "User account is inactive.", err.Error()))
	default:
		utils.LogError(err, message)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, message, "Internal error"))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// bindJSON binds the request body and writes the 400 response itself on failure.
func bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogDebug(op+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
		utils.RespondValidationFailed(c, err.Error())
		return false
	}
	return true
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, param, label string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(param))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+label+" ID format.", c.Param(param)))
		return 0, false
	}
	return id, true
}

// pagination reads page and page_size with the usual defaults.
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return nil, false
	}
	return &v, true
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return nil, false
	}
	return &v, true
}

func queryString(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

// currentUserID returns the authenticated user's id, if any.
func currentUserID(c *gin.Context) *int64 {
	raw, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return nil
	}
	id, ok := raw.(int64)
	if !ok {
		return nil
	}
	return &id
}

func respondList(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
