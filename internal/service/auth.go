package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipeshare/internal/auth"
	"recipeshare/internal/models"
	"recipeshare/internal/store"
)

// AuthService handles credential issuance and verification plus the account
// lifecycle. Resolve is the single gate every authenticated request passes
// through; handlers must not decode tokens themselves.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.Identity, error)
	Login(ctx context.Context, username, password string) (*models.Token, error)
	Resolve(ctx context.Context, tokenString string) (*models.Identity, error)
	DeleteAccount(ctx context.Context, identity *models.Identity, userID string) error
}

type authService struct {
	users   store.Collection
	recipes store.Collection
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	logger  *zap.Logger
}

func NewAuthService(users, recipes store.Collection, hasher *auth.PasswordHasher, tokens *auth.TokenService, logger *zap.Logger) AuthService {
	return &authService{
		users:   users,
		recipes: recipes,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger,
	}
}

// Register hashes the password before any persistence and stores the new
// credential record. The uniqueness constraint on username decides whether
// the registration succeeds.
func (s *authService) Register(ctx context.Context, username, password string) (*models.Identity, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, Password: passwordHash}
	if _, err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.Identity{Username: username}, nil
}

// Login verifies the credentials and issues a bearer token. An unknown
// username and a wrong password fail identically.
func (s *authService) Login(ctx context.Context, username, password string) (*models.Token, error) {
	raw, err := s.users.FindOne(ctx, store.Filter{Eq: map[string]string{"username": username}})
	if err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	tokenString, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("username", user.Username))
	return &models.Token{AccessToken: tokenString, TokenType: "bearer"}, nil
}

// Resolve verifies the presented token and maps its claim onto a registered
// identity. The password hash never leaves this method.
func (s *authService) Resolve(ctx context.Context, tokenString string) (*models.Identity, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, ErrInvalidToken
	}

	_, err = s.users.FindOne(ctx, store.Filter{Eq: map[string]string{"username": claims.Username}})
	if err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, ErrUnknownIdentity
		}
		s.logger.Error("Failed to look up token subject", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return &models.Identity{Username: claims.Username}, nil
}

// DeleteAccount removes the credential record, then cleans up everything the
// account authored: its recipes are deleted and its comments are pulled from
// every remaining recipe. The id+username filter makes this self-delete only.
// The cleanup steps are best-effort and not atomic with the account deletion;
// a crash in between can leave orphaned documents behind.
func (s *authService) DeleteAccount(ctx context.Context, identity *models.Identity, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return ErrInvalidID
	}

	deleted, err := s.users.DeleteConditional(ctx, store.Filter{
		ID: userID,
		Eq: map[string]string{"username": identity.Username},
	})
	if err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	if _, err := s.recipes.DeleteConditional(ctx, store.Filter{
		Eq: map[string]string{"author": identity.Username},
	}); err != nil {
		s.logger.Warn("Failed to delete recipes of removed account",
			zap.String("username", identity.Username), zap.Error(err))
	}

	if _, err := s.recipes.UpdateConditional(ctx,
		store.Filter{Elem: &store.ElemMatch{Field: "comments", Key: "author", Value: identity.Username}},
		store.Patch{Pull: &store.ElemMatch{Field: "comments", Key: "author", Value: identity.Username}},
	); err != nil {
		s.logger.Warn("Failed to remove comments of removed account",
			zap.String("username", identity.Username), zap.Error(err))
	}

	s.logger.Info("User account deleted", zap.String("username", identity.Username))
	return nil
}
