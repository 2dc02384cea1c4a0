package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindInput struct {
	Topic           string `json:"topic" binding:"required"`
	LookbackMinutes int    `json:"lookback_minutes" binding:"gte=0,lte=1440"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/sync", func(c *gin.Context) {
		var in bindInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func postJSON(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleValidationErrorFieldDetails(t *testing.T) {
	w := postJSON(validationRouter(), `{"lookback_minutes": 99999}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)

	// JSON tag names, not Go field names.
	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "topic")
	assert.Contains(t, fields, "lookback_minutes")
}

func TestHandleValidationErrorCarriesRequestID(t *testing.T) {
	r := validationRouter()
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "validation-req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation-req-1", resp.Error.RequestID)
}

func TestHandleValidationErrorNonValidatorError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/sync", func(c *gin.Context) {
		HandleValidationError(c, errors.New("unexpected EOF"))
	})

	w := postJSON(r, `{"topic": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unexpected EOF")
}

func TestHandleValidationErrorValidInputPasses(t *testing.T) {
	w := postJSON(validationRouter(), `{"topic": "products/update", "lookback_minutes": 60}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationMessages(t *testing.T) {
	type input struct {
		Required string `validate:"required"`
		Min      string `validate:"min=5"`
		OneOf    string `validate:"oneof=a b c"`
		GTE      int    `validate:"gte=10"`
		Numeric  string `validate:"numeric"`
	}

	err := validator.New().Struct(input{Numeric: "abc", OneOf: "z"})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"Min":      "Must be at least 5 characters",
		"OneOf":    "Must be one of: a b c",
		"GTE":      "Must be greater than or equal to 10",
		"Numeric":  "Must be numeric",
	}
	for _, e := range err.(validator.ValidationErrors) {
		if expected, ok := want[e.StructField()]; ok {
			assert.Equal(t, expected, validationMessage(e), "field %s", e.StructField())
			delete(want, e.StructField())
		}
	}
	assert.Empty(t, want, "all expected fields should produce errors")
}
