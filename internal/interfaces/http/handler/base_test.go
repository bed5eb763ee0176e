package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/interfaces/http/dto"
	"github.com/soko/backend/internal/interfaces/http/middleware"
)

func newTestContext() (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return w, c
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set("X-Request-ID", "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestContext()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w, c := newTestContext()

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	w, c := newTestContext()

	h.Created(c, gin.H{"id": "abc"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleError_DomainError(t *testing.T) {
	tests := []struct {
		code           string
		expectedStatus int
		expectedCode   string
	}{
		{"NOT_FOUND", http.StatusNotFound, dto.ErrCodeNotFound},
		{"VALIDATION_ERROR", http.StatusBadRequest, dto.ErrCodeValidation},
		{"FORBIDDEN", http.StatusForbidden, dto.ErrCodeForbidden},
		{"CONFLICT", http.StatusConflict, dto.ErrCodeConflict},
		{"INVALID_STATE", http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w, c := newTestContext()
			c.Set(middleware.RequestIDKey, "req-123")

			h.HandleError(c, shared.NewDomainError(tt.code, "boom"))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, "req-123", resp.Error.RequestID)
		})
	}
}

func TestHandleError_WrappedDomainError(t *testing.T) {
	h := &BaseHandler{}
	w, c := newTestContext()

	wrapped := fmt.Errorf("lookup failed: %w", shared.NewDomainError("NOT_FOUND", "Shop not found"))
	h.HandleError(c, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleError_UnknownError(t *testing.T) {
	h := &BaseHandler{}
	w, c := newTestContext()

	h.HandleError(c, errors.New("driver: bad connection"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	// Internal details must not leak to clients
	assert.NotContains(t, resp.Error.Message, "driver")
}

func TestBindingError_FieldDetails(t *testing.T) {
	type payload struct {
		Name  string  `json:"name" binding:"required"`
		Price float64 `json:"price" binding:"required,gt=0"`
	}

	h := &BaseHandler{}
	w, c := newTestContext()
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"price": -1}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	err := c.ShouldBindJSON(&p)
	require.Error(t, err)
	h.BindingError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)

	fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "price")
}

func TestBindingError_MalformedJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name" binding:"required"`
	}

	h := &BaseHandler{}
	w, c := newTestContext()
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{not json`))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	err := c.ShouldBindJSON(&p)
	require.Error(t, err)
	h.BindingError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
}

func TestHandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	w, c := newTestContext()

	h.HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}
