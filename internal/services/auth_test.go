package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		email         string
		role          string
		byUsername    *models.UserDB
		byEmail       *models.UserDB
		readerErr     error
		writerErr     error
		expectSave    bool
		wantRole      models.Role
		wantErr       error
		wantErrString string
	}{
		{
			name:       "successful registration",
			username:   "alice",
			password:   "pass123",
			email:      "alice@example.com",
			expectSave: true,
			wantRole:   models.RoleStaff,
		},
		{
			name:       "admin role kept",
			username:   "root",
			password:   "pass123",
			email:      "root@example.com",
			role:       "ADMIN",
			expectSave: true,
			wantRole:   models.RoleAdmin,
		},
		{
			name:       "unknown role falls back to staff",
			username:   "mallory",
			password:   "pass123",
			email:      "mallory@example.com",
			role:       "superuser",
			expectSave: true,
			wantRole:   models.RoleStaff,
		},
		{
			name:       "username taken",
			username:   "bob",
			password:   "pass123",
			email:      "bob@example.com",
			byUsername: &models.UserDB{UserID: uuid.New()},
			wantErr:    services.ErrUsernameTaken,
		},
		{
			name:     "email taken",
			username: "bobby",
			password: "pass123",
			email:    "bob@example.com",
			byEmail:  &models.UserDB{UserID: uuid.New()},
			wantErr:  services.ErrEmailTaken,
		},
		{
			name:          "reader error",
			username:      "eve",
			password:      "pass123",
			email:         "eve@example.com",
			readerErr:     errors.New("db error"),
			wantErrString: "db error",
		},
		{
			name:       "race on insert",
			username:   "carol",
			password:   "pass123",
			email:      "carol@example.com",
			expectSave: true,
			writerErr:  repositories.ErrDuplicateUser,
			wantErr:    services.ErrUserAlreadyExists,
		},
		{
			name:          "writer error",
			username:      "dan",
			password:      "pass123",
			email:         "dan@example.com",
			expectSave:    true,
			writerErr:     errors.New("save error"),
			wantErrString: "save error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockJWT := services.NewMockJWTGenerator(ctrl)
			mockEvents := services.NewMockEventPublisher(ctrl)

			svc := services.NewAuthService(mockReader, mockWriter, mockJWT, mockEvents)

			mockReader.EXPECT().
				GetByUsernameOrEmail(gomock.Any(), &tt.username, (*string)(nil)).
				Return(tt.byUsername, tt.readerErr)

			if tt.byUsername == nil && tt.readerErr == nil {
				mockReader.EXPECT().
					GetByUsernameOrEmail(gomock.Any(), (*string)(nil), &tt.email).
					Return(tt.byEmail, nil)
			}

			var saved *models.UserDB
			if tt.expectSave {
				mockWriter.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *models.UserDB) error {
						saved = u
						return tt.writerErr
					})
			}

			if tt.expectSave && tt.writerErr == nil {
				mockEvents.EXPECT().
					Publish(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, e models.AuthEvent) {
						assert.Equal(t, models.EventRegister, e.Operation)
						assert.Equal(t, tt.username, e.Login)
					})
			}

			user, err := svc.Register(context.Background(), tt.username, tt.password, tt.email, tt.role)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			case tt.wantErrString != "":
				assert.EqualError(t, err, tt.wantErrString)
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.wantRole, user.Role)
				require.NotNil(t, saved)
				assert.Equal(t, saved.UserID, user.UserID)
				assert.NotEqual(t, tt.password, saved.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte(tt.password)))
			}
		})
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := services.NewAuthService(services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl), services.NewMockJWTGenerator(ctrl), nil)

	_, err := svc.Register(context.Background(), " ", "pass", "a@example.com", "")
	assert.ErrorIs(t, err, services.ErrMissingFields)
	_, err = svc.Register(context.Background(), "alice", "", "a@example.com", "")
	assert.ErrorIs(t, err, services.ErrMissingFields)
	_, err = svc.Register(context.Background(), "alice", "pass", "", "")
	assert.ErrorIs(t, err, services.ErrMissingFields)
}

func TestAuthService_Register_UsernameWithAt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no repository calls are expected
	svc := services.NewAuthService(services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl), services.NewMockJWTGenerator(ctrl), nil)

	user, err := svc.Register(context.Background(), "alice@fdg", "pass", "alice@example.com", "")
	assert.ErrorIs(t, err, services.ErrInvalidUsername)
	assert.Nil(t, user)
}

func TestAuthService_Login(t *testing.T) {
	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	userID := uuid.New()

	tests := []struct {
		name       string
		login      string
		byEmail    bool
		user       *models.UserDB
		readerErr  error
		jwtErr     error
		loginPass  string
		wantEvent  string
		wantErr    error
		wantErrStr string
		wantToken  string
	}{
		{
			name:      "successful login by email",
			login:     "alice@example.com",
			byEmail:   true,
			user:      &models.UserDB{UserID: userID, Username: "alice", Email: "alice@example.com", PasswordHash: string(hashed), Role: models.RoleAdmin},
			loginPass: password,
			wantEvent: models.EventLogin,
			wantToken: "token123",
		},
		{
			name:      "successful login by username",
			login:     "alice",
			user:      &models.UserDB{UserID: userID, Username: "alice", PasswordHash: string(hashed), Role: models.RoleStaff},
			loginPass: password,
			wantEvent: models.EventLogin,
			wantToken: "token456",
		},
		{
			name:      "user does not exist",
			login:     "bob@example.com",
			byEmail:   true,
			loginPass: password,
			wantEvent: models.EventLoginFailed,
			wantErr:   services.ErrUserDoesNotExist,
		},
		{
			name:      "invalid password",
			login:     "carol",
			user:      &models.UserDB{UserID: uuid.New(), Username: "carol", PasswordHash: string(hashed)},
			loginPass: "wrongpass",
			wantEvent: models.EventLoginFailed,
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:       "reader error",
			login:      "eve",
			readerErr:  errors.New("db error"),
			loginPass:  password,
			wantErrStr: "db error",
		},
		{
			name:       "JWT generation error",
			login:      "dan",
			user:       &models.UserDB{UserID: userID, Username: "dan", PasswordHash: string(hashed), Role: models.RoleStaff},
			jwtErr:     errors.New("jwt error"),
			loginPass:  password,
			wantErrStr: "jwt error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockReader := services.NewMockUserReader(ctrl)
			mockJWT := services.NewMockJWTGenerator(ctrl)
			mockEvents := services.NewMockEventPublisher(ctrl)
			svc := services.NewAuthService(mockReader, services.NewMockUserWriter(ctrl), mockJWT, mockEvents)

			if tt.byEmail {
				mockReader.EXPECT().
					GetByUsernameOrEmail(gomock.Any(), (*string)(nil), &tt.login).
					Return(tt.user, tt.readerErr)
			} else {
				mockReader.EXPECT().
					GetByUsernameOrEmail(gomock.Any(), &tt.login, (*string)(nil)).
					Return(tt.user, tt.readerErr)
			}

			if tt.user != nil && tt.loginPass == password {
				mockJWT.EXPECT().
					Generate(gomock.Any(), tt.user.UserID, string(tt.user.Role)).
					Return(tt.wantToken, tt.jwtErr)
			}

			if tt.wantEvent != "" {
				mockEvents.EXPECT().
					Publish(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, e models.AuthEvent) {
						assert.Equal(t, tt.wantEvent, e.Operation)
						assert.Equal(t, tt.login, e.Login)
						assert.NotEmpty(t, e.EventID)
					})
			}

			token, user, err := svc.Login(context.Background(), tt.login, tt.loginPass)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, user)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
				assert.Empty(t, token)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				require.NotNil(t, user)
				assert.Equal(t, tt.user.UserID, user.UserID)
				assert.Equal(t, tt.user.Role, user.Role)
			}
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	mockEvents := services.NewMockEventPublisher(ctrl)
	mockEvents.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e models.AuthEvent) {
			assert.Equal(t, models.EventLogout, e.Operation)
			assert.Equal(t, userID.String(), e.UserID)
		})

	svc := services.NewAuthService(services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl), services.NewMockJWTGenerator(ctrl), mockEvents)
	assert.NoError(t, svc.Logout(context.Background(), userID))
}
