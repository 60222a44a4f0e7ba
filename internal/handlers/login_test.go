package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)
	user := &models.User{UserID: uuid.New(), Username: "john", Email: "john@example.com", Role: models.RoleStaff}

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name: "success by email",
			inputBody: models.LoginRequest{
				Email:    "john@example.com",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john@example.com", "pass123").
					Return("JWT_TOKEN", user, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &models.LoginResponse{
				Message: "Login successful",
				Token:   "JWT_TOKEN",
				User:    user,
			},
		},
		{
			name: "success by username",
			inputBody: models.LoginRequest{
				Username: "john",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john", "pass123").
					Return("JWT_TOKEN", user, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &models.LoginResponse{
				Message: "Login successful",
				Token:   "JWT_TOKEN",
				User:    user,
			},
		},
		{
			name:         "invalid JSON",
			inputBody:    "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: &models.MessageResponse{
				Message: "Invalid request body",
			},
		},
		{
			name:         "missing password",
			inputBody:    models.LoginRequest{Email: "john@example.com"},
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: &models.MessageResponse{
				Message: "Email and password are required",
			},
		},
		{
			name: "user does not exist",
			inputBody: models.LoginRequest{
				Email:    "ghost@example.com",
				Password: "wrongpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "ghost@example.com", "wrongpass").
					Return("", nil, services.ErrUserDoesNotExist)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: &models.MessageResponse{
				Message: "Invalid email or password",
			},
		},
		{
			name: "wrong password",
			inputBody: models.LoginRequest{
				Email:    "john@example.com",
				Password: "wrongpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john@example.com", "wrongpass").
					Return("", nil, services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: &models.MessageResponse{
				Message: "Invalid email or password",
			},
		},
		{
			name: "internal error",
			inputBody: models.LoginRequest{
				Email:    "john@example.com",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john@example.com", "pass123").
					Return("", nil, errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &models.MessageResponse{
				Message: "Internal server error",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			var bodyBytes []byte
			switch v := tt.inputBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, _ = json.Marshal(v)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(bodyBytes))
			w := httptest.NewRecorder()

			handler := NewLoginHandler(mockSvc)
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var respBody interface{}
			switch tt.expectedCode {
			case http.StatusOK:
				respBody = &models.LoginResponse{}
			default:
				respBody = &models.MessageResponse{}
			}
			err := json.Unmarshal(w.Body.Bytes(), respBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, respBody)
		})
	}
}
