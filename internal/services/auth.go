package services

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrMissingFields      = errors.New("username, password and email are required")
	ErrInvalidUsername    = errors.New("username must not contain @")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user *models.UserDB) error
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, role string) (string, error)
}

// EventPublisher records authentication audit events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.AuthEvent)
}

// AuthService handles registration, login and logout.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
	events EventPublisher
	now    func() time.Time
}

// NewAuthService creates a new AuthService instance. events may be nil.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator, events EventPublisher) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
		events: events,
		now:    time.Now,
	}
}

// Register creates a new account. Unknown roles become staff. Usernames must not contain "@".
func (svc *AuthService) Register(ctx context.Context, username, password, email, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return nil, ErrMissingFields
	}
	// Login treats any "@" as an email address.
	if strings.Contains(username, "@") {
		return nil, ErrInvalidUsername
	}

	existing, err := svc.reader.GetByUsernameOrEmail(ctx, &username, nil)
	if err != nil {
		logger.Log.Errorw("failed to check username", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Warnw("username already exists", "username", username)
		return nil, ErrUsernameTaken
	}

	existing, err = svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if err != nil {
		logger.Log.Errorw("failed to check email", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Warnw("email already exists", "email", email)
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	now := svc.now().UTC()
	user := &models.UserDB{
		UserID:       uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.ParseRole(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	svc.publish(ctx, models.EventRegister, user.UserID, username)
	return user.ToUser(), nil
}

// Login authenticates by email (when login contains "@") or username and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	login = strings.TrimSpace(login)

	var username, email *string
	if strings.Contains(login, "@") {
		email = &login
	} else {
		username = &login
	}

	user, err := svc.reader.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", nil, err
	}
	if user == nil {
		logger.Log.Warnw("user does not exist", "login", login)
		svc.publish(ctx, models.EventLoginFailed, uuid.Nil, login)
		return "", nil, ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Warnw("invalid credentials", "login", login)
		svc.publish(ctx, models.EventLoginFailed, user.UserID, login)
		return "", nil, ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID, string(user.Role))
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", nil, err
	}

	svc.publish(ctx, models.EventLogin, user.UserID, login)
	return token, user.ToUser(), nil
}

// Logout records the end of a session. Tokens are stateless and expire on their own.
func (svc *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	svc.publish(ctx, models.EventLogout, userID, "")
	return nil
}

func (svc *AuthService) publish(ctx context.Context, operation string, userID uuid.UUID, login string) {
	if svc.events == nil {
		return
	}
	event := models.AuthEvent{
		EventID:   uuid.NewString(),
		Timestamp: svc.now().Unix(),
		Login:     login,
		Operation: operation,
	}
	if userID != uuid.Nil {
		event.UserID = userID.String()
	}
	svc.events.Publish(ctx, event)
}
