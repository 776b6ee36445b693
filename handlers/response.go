package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case utils.IsValidationError(err), utils.IsDateParseError(err):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrorDuplicateKey), errors.Is(err, utils.ErrorCodeSequenceExhausted):
		return http.StatusConflict
	case errors.Is(err, models.ErrorInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
		body["error"] = ve.Message
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// respondExists answers an existence check with {"exists": bool}.
func respondExists(c *gin.Context, exists bool, err error) {
	respond(c, http.StatusOK, gin.H{"exists": exists}, err)
}

// nextCode previews the code the next create of series would receive.
func nextCode(series models.CodeSeries) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := models.PeekNextCode(c.Request.Context(), series)
		respond(c, http.StatusOK, gin.H{"code": code}, err)
	}
}

// respondBindError reports a request body or query that could not be decoded or validated.
func respondBindError(c *gin.Context, err error) {
	if utils.IsValidationError(err) || utils.IsDateParseError(err) {
		respondError(c, err)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}

// respond writes value with status, or the mapped error.
func respond[T any](c *gin.Context, status int, value T, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, value)
}

// respondFound is respond for lookups: a nil result is 404.
func respondFound[T any](c *gin.Context, value *T, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if value == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusOK, value)
}

func bindPage(c *gin.Context) (*models.Page, bool) {
	var page models.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		respondBindError(c, err)
		return nil, false
	}
	return &page, true
}

func requiredQuery(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		respondError(c, utils.NewValidationError(name, "is required"))
		return "", false
	}
	return value, true
}

func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw, ok := requiredQuery(c, name)
	if !ok {
		return time.Time{}, false
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		respondError(c, err)
		return time.Time{}, false
	}
	return t, true
}

// dateQueryOrNow is dateQuery with the current time when the parameter is absent.
func dateQueryOrNow(c *gin.Context, name string) (time.Time, bool) {
	if _, present := c.GetQuery(name); !present {
		return utils.NormalizeDate(time.Now()), true
	}
	return dateQuery(c, name)
}

func dateRangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := dateQuery(c, "from_date")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := dateQuery(c, "to_date")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func dateParam(c *gin.Context, name string) (time.Time, bool) {
	t, err := utils.ParseDate(c.Param(name))
	if err != nil {
		respondError(c, err)
		return time.Time{}, false
	}
	return t, true
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, utils.NewValidationError(name, "must be an integer"))
		return 0, false
	}
	return n, true
}

// decimalQuery returns nil when the parameter is absent.
func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	d, err := utils.UnmarshalDecimal(raw)
	if err != nil {
		respondError(c, utils.NewValidationError(name, "must be a number"))
		return nil, false
	}
	return &d, true
}
