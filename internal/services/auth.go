package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/admindir"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/platform/passhash"
)

type SignInInput struct {
	// Identifier is an email for administrators and a username for agents.
	Identifier string
	Password   string
	Role       string
}

type SessionUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	CustomerID int64  `json:"customer_id"`
}

type SignInResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

type AuthService interface {
	SignIn(ctx context.Context, in SignInInput) (*SignInResult, error)
	IssueToken(p auth.Principal) (string, time.Time, error)
	ParseToken(tokenString string) (auth.Principal, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	Role      string `json:"role"`
	ManagerID int64  `json:"manager_id"`
	jwt.RegisteredClaims
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	agentRepo    repos.AgentRepo
	directory    admindir.Directory
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	agentRepo repos.AgentRepo,
	directory admindir.Directory,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 7 * 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		agentRepo:    agentRepo,
		directory:    directory,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, apierr.Validationf("missing_credentials", "email or username and password are required")
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return nil, apierr.Validation("invalid_role", err)
	}

	var (
		p    auth.Principal
		user SessionUser
	)
	switch role {
	case auth.RoleAdministrator:
		p, user, err = as.signInAdministrator(ctx, identifier, in.Password)
	case auth.RoleAgent:
		p, user, err = as.signInAgent(ctx, identifier, in.Password)
	}
	if err != nil {
		return nil, err
	}

	token, exp, err := as.IssueToken(p)
	if err != nil {
		return nil, err
	}
	as.log.Info("Signed in", "role", role.String(), "user_id", p.ID)
	return &SignInResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (as *authService) signInAdministrator(ctx context.Context, email, password string) (auth.Principal, SessionUser, error) {
	if as.directory == nil {
		return auth.Principal{}, SessionUser{}, apierr.Unauthorizedf("admin_signin_unavailable", "administrator sign-in is not configured")
	}
	admin, err := as.directory.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, admindir.ErrAccountNotFound):
		return auth.Principal{}, SessionUser{}, apierr.Unauthorizedf("account_not_found", "account not found")
	case errors.Is(err, admindir.ErrIncorrectPassword):
		return auth.Principal{}, SessionUser{}, apierr.Unauthorizedf("incorrect_password", "incorrect password")
	case err != nil:
		return auth.Principal{}, SessionUser{}, fmt.Errorf("admin directory: %w", err)
	}
	return auth.Administrator(admin.CustomerID), SessionUser{
		ID:         admin.CustomerID,
		Username:   admin.Email,
		Email:      admin.Email,
		Role:       auth.RoleAdministrator.String(),
		CustomerID: admin.CustomerID,
	}, nil
}

func (as *authService) signInAgent(ctx context.Context, username, password string) (auth.Principal, SessionUser, error) {
	agent, err := as.agentRepo.GetByUsername(dbctx.Context{Ctx: ctx}, username)
	if err != nil {
		return auth.Principal{}, SessionUser{}, fmt.Errorf("lookup agent: %w", err)
	}
	if agent == nil {
		return auth.Principal{}, SessionUser{}, apierr.Unauthorizedf("account_not_registered", "this account is not registered")
	}
	if !agent.IsActive {
		return auth.Principal{}, SessionUser{}, apierr.Forbiddenf("account_inactive", "account is not active")
	}
	if !passhash.Verify(password, agent.PasswordHash) {
		return auth.Principal{}, SessionUser{}, apierr.Unauthorizedf("incorrect_password", "incorrect password")
	}
	return auth.Agent(agent.ID, agent.ManagerID), SessionUser{
		ID:         agent.ID,
		Username:   agent.Username,
		Role:       auth.RoleAgent.String(),
		CustomerID: agent.ManagerID,
	}, nil
}

func (as *authService) IssueToken(p auth.Principal) (string, time.Time, error) {
	if !p.Valid() {
		return "", time.Time{}, fmt.Errorf("invalid principal")
	}
	now := time.Now()
	exp := now.Add(as.accessTTL)
	claims := JWTClaims{
		Role:      p.Role.String(),
		ManagerID: p.ManagerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (as *authService) ParseToken(tokenString string) (auth.Principal, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return auth.Principal{}, apierr.Unauthorized("invalid_token", fmt.Errorf("invalid token: %w", err))
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return auth.Principal{}, apierr.Unauthorizedf("invalid_token", "invalid token subject")
	}
	role, err := auth.ParseRole(claims.Role)
	if err != nil {
		return auth.Principal{}, apierr.Unauthorized("invalid_token", err)
	}
	p := auth.Principal{ID: id, Role: role, ManagerID: claims.ManagerID}
	if role == auth.RoleAdministrator {
		p.ManagerID = id
	}
	if p.ManagerID <= 0 {
		return auth.Principal{}, apierr.Unauthorizedf("invalid_token", "token has no manager")
	}
	return p, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	p, err := as.ParseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: tokenString, Principal: p}), nil
}
