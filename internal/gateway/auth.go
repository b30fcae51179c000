package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6
	tokenIssuer       = "zappygames"

	invalidCredentialsMessage = "Invalid login credentials"
	alreadyRegisteredMessage  = "User already registered"
)

type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is a signed-in identity plus the bearer token that proves it.
type Session struct {
	Token     string    `json:"accessToken"`
	Identity  Identity  `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Auth is the password-auth surface of the remote store.
type Auth interface {
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	// GetSession returns nil without error when the token is not a live session.
	GetSession(ctx context.Context, token string) (*Session, error)
}

type AuthOptions struct {
	Secret   []byte
	TokenTTL time.Duration
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type configuredAuth struct {
	db       *gorm.DB
	sessions SessionStore
	options  AuthOptions
	validate *validator.Validate
	log      logger.Logger
}

func newConfiguredAuth(db *gorm.DB, sessions SessionStore, options AuthOptions) *configuredAuth {
	if options.TokenTTL <= 0 {
		options.TokenTTL = 7 * 24 * time.Hour
	}

	return &configuredAuth{
		db:       db,
		sessions: sessions,
		options:  options,
		validate: validator.New(),
		log:      logger.New("gateway").File("auth"),
	}
}

func (a *configuredAuth) SignUp(ctx context.Context, email, password string) (Session, error) {
	log := a.log.TraceFromContext(ctx).Function("SignUp")

	email = normalizeEmail(email)
	if err := a.checkCredentials(email, password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, log.Err("failed to hash password", err)
	}

	now := time.Now().UTC()
	account := models.AuthAccount{
		Email:        email,
		PasswordHash: string(hash),
		LastSignInAt: &now,
	}

	if err := a.db.WithContext(ctx).Create(&account).Error; err != nil {
		translated := translateError(err)
		if errors.Is(translated, ErrRemoteRejected) {
			return Session{}, fmt.Errorf("%w: %s", ErrAuth, alreadyRegisteredMessage)
		}
		log.Er("failed to create account", err, "email", email)
		return Session{}, translated
	}

	log.Info("Account created", "accountID", account.ID)
	return a.issue(ctx, account)
}

func (a *configuredAuth) SignIn(ctx context.Context, email, password string) (Session, error) {
	log := a.log.TraceFromContext(ctx).Function("SignIn")

	email = normalizeEmail(email)

	var account models.AuthAccount
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, fmt.Errorf("%w: %s", ErrAuth, invalidCredentialsMessage)
	}
	if err != nil {
		log.Er("failed to load account", err, "email", email)
		return Session{}, translateError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrAuth, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := a.db.WithContext(ctx).
		Model(&account).
		Update("last_sign_in_at", now).Error; err != nil {
		log.Warn("failed to record sign in time", "accountID", account.ID, "error", err)
	}

	return a.issue(ctx, account)
}

func (a *configuredAuth) SignOut(ctx context.Context, token string) error {
	log := a.log.TraceFromContext(ctx).Function("SignOut")

	parsed, err := a.parse(token)
	if err != nil {
		// an unusable token has no session to end
		return nil
	}

	if err := a.sessions.Delete(ctx, parsed.ID); err != nil {
		log.Er("failed to revoke session", err, "sessionID", parsed.ID)
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (a *configuredAuth) GetSession(ctx context.Context, token string) (*Session, error) {
	log := a.log.TraceFromContext(ctx).Function("GetSession")

	if token == "" {
		return nil, nil
	}

	parsed, err := a.parse(token)
	if err != nil {
		log.Debug("rejected token", "error", err)
		return nil, nil
	}

	live, err := a.sessions.Exists(ctx, parsed.ID)
	if err != nil {
		log.Er("failed to check session", err, "sessionID", parsed.ID)
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if !live {
		return nil, nil
	}

	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return nil, nil
	}

	return &Session{
		Token:     token,
		Identity:  Identity{ID: userID, Email: parsed.Email},
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

func (a *configuredAuth) checkCredentials(email, password string) error {
	if err := a.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && validationErrors[0].Field() == "Password" {
			return fmt.Errorf(
				"%w: Password should be at least %d characters",
				ErrAuth,
				MinPasswordLength,
			)
		}
		return fmt.Errorf("%w: Unable to validate email address: invalid format", ErrAuth)
	}
	return nil
}

func (a *configuredAuth) issue(ctx context.Context, account models.AuthAccount) (Session, error) {
	log := a.log.TraceFromContext(ctx).Function("issue")

	now := time.Now().UTC()
	expiresAt := now.Add(a.options.TokenTTL)
	sessionID := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   account.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(a.options.Secret)
	if err != nil {
		return Session{}, log.Err("failed to sign token", err)
	}

	if err := a.sessions.Save(ctx, sessionID, a.options.TokenTTL); err != nil {
		log.Er("failed to store session", err, "sessionID", sessionID)
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	return Session{
		Token:     signed,
		Identity:  Identity{ID: account.ID, Email: account.Email},
		ExpiresAt: expiresAt,
	}, nil
}

func (a *configuredAuth) parse(token string) (*claims, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(
		token,
		parsed,
		func(t *jwt.Token) (any, error) {
			return a.options.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
