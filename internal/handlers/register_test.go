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
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockRegisterer(ctrl)
	created := &models.User{UserID: uuid.New(), Username: "maria", Email: "maria@example.com", Role: models.RoleAdmin}

	validReq := models.RegisterRequest{
		Username: "maria",
		Password: "pass123",
		Email:    "maria@example.com",
		Role:     "admin",
	}

	tests := []struct {
		name        string
		body        interface{}
		mockSetup   func()
		wantCode    int
		wantMessage string
		wantUser    *models.User
	}{
		{
			name: "created",
			body: validReq,
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria", "pass123", "maria@example.com", "admin").
					Return(created, nil)
			},
			wantCode:    http.StatusCreated,
			wantMessage: "User created successfully",
			wantUser:    created,
		},
		{
			name:        "invalid JSON",
			body:        "{not json",
			mockSetup:   func() {},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name: "missing fields",
			body: models.RegisterRequest{Username: "maria"},
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria", "", "", "").
					Return(nil, services.ErrMissingFields)
			},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Username, password and email are required",
		},
		{
			name: "username with @",
			body: models.RegisterRequest{Username: "maria@fdg", Password: "pass123", Email: "maria@example.com"},
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria@fdg", "pass123", "maria@example.com", "").
					Return(nil, services.ErrInvalidUsername)
			},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid username",
		},
		{
			name: "username taken",
			body: validReq,
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria", "pass123", "maria@example.com", "admin").
					Return(nil, services.ErrUsernameTaken)
			},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Username already exists",
		},
		{
			name: "email taken",
			body: validReq,
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria", "pass123", "maria@example.com", "admin").
					Return(nil, services.ErrEmailTaken)
			},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Email already exists",
		},
		{
			name: "lost insert race",
			body: validReq,
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria", "pass123", "maria@example.com", "admin").
					Return(nil, services.ErrUserAlreadyExists)
			},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Username or email already exists",
		},
		{
			name: "internal error",
			body: validReq,
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "maria", "pass123", "maria@example.com", "admin").
					Return(nil, errors.New("db down"))
			},
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			var bodyBytes []byte
			switch v := tt.body.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, _ = json.Marshal(v)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/users/create", bytes.NewReader(bodyBytes))
			w := httptest.NewRecorder()

			NewRegisterHandler(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)

			var resp models.RegisterResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantUser, resp.User)
		})
	}
}
