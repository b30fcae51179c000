package authController

import (
	"context"
	"strings"
	"zappygames/internal/gateway"
	"zappygames/internal/session"
	"zappygames/internal/types"
	"zappygames/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
)

type SignInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Email       string `json:"email"       validate:"required"`
	Password    string `json:"password"    validate:"required"`
	DisplayName string `json:"displayName" validate:"omitempty,min=2,max=40"`
}

type AuthResponse struct {
	Authenticated bool              `json:"authenticated"`
	Token         string            `json:"token,omitempty"`
	User          *gateway.Identity `json:"user,omitempty"`
}

type AuthControllerInterface interface {
	SignUp(ctx context.Context, request *SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, request *SignInRequest) (*AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) *AuthResponse
	IsConfigured() bool
}

type AuthController struct {
	sessions *session.Service
	validate *validator.Validate
	log      logger.Logger
}

func New(sessions *session.Service) AuthControllerInterface {
	return &AuthController{
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger.New("authController"),
	}
}

func (c *AuthController) IsConfigured() bool {
	return c.sessions.IsConfigured()
}

// SignUp creates the account and its profile. Without a display name the
// email's local part is used.
func (c *AuthController) SignUp(ctx context.Context, request *SignUpRequest) (*AuthResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("SignUp")

	if err := c.validate.Struct(request); err != nil {
		return nil, log.ErrorWithType(types.ErrValidation, "email and password are required", "error", err)
	}

	displayName := utils.CleanText(request.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(strings.TrimSpace(request.Email), "@")
	}

	state := c.sessions.Open(ctx, "")
	defer state.Close()

	if err := state.SignUp(ctx, request.Email, request.Password, displayName); err != nil {
		return nil, err
	}

	return responseOf(state.Current()), nil
}

func (c *AuthController) SignIn(ctx context.Context, request *SignInRequest) (*AuthResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("SignIn")

	if err := c.validate.Struct(request); err != nil {
		return nil, log.ErrorWithType(types.ErrValidation, "email and password are required", "error", err)
	}

	state := c.sessions.Open(ctx, "")
	defer state.Close()

	if err := state.SignIn(ctx, request.Email, request.Password); err != nil {
		return nil, err
	}

	return responseOf(state.Current()), nil
}

// SignOut revokes the token. Signing out without a live session succeeds.
func (c *AuthController) SignOut(ctx context.Context, token string) error {
	state := c.sessions.Open(ctx, token)
	defer state.Close()

	return state.SignOut(ctx)
}

func (c *AuthController) Session(ctx context.Context, token string) *AuthResponse {
	state := c.sessions.Open(ctx, token)
	defer state.Close()

	return responseOf(state.Current())
}

func responseOf(snapshot session.Snapshot) *AuthResponse {
	return &AuthResponse{
		Authenticated: snapshot.Authenticated,
		Token:         snapshot.Token,
		User:          snapshot.Identity,
	}
}
