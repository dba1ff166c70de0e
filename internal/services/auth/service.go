package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brentkao/roomcoord/internal/dependencies/clock"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/storage"
)

// Credential is a signed long-lived token and the player it was issued to
type Credential struct {
	Token     string
	Player    model.Player
	Identity  model.Identity
	ExpiresAt time.Time
}

// Claims is the JWT payload carried by a credential
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service registers players and issues and verifies credentials
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	secret        []byte
	credentialTTL time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	Secret        string        `yaml:"jwt_secret"`
	CredentialTTL time.Duration `yaml:"credential_ttl"`
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Secret:        "dev-secret-change-me",
		CredentialTTL: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.CredentialTTL == 0 {
		cfg.CredentialTTL = DefaultConfig().CredentialTTL
	}
	return &Service{
		storage:       storage,
		clock:         clock,
		secret:        []byte(cfg.Secret),
		credentialTTL: cfg.CredentialTTL,
	}
}

// CreateGuestPlayer creates an unregistered player with the user role
func (s *Service) CreateGuestPlayer(ctx context.Context, displayName string) (*Credential, error) {
	player := &model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: displayName,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	return s.issue(player, model.RoleUser)
}

// RegisterPlayer creates a player account and returns a credential for it
func (s *Service) RegisterPlayer(ctx context.Context, username, password string) (*Credential, error) {
	_, err := s.storage.GetAccountByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameExists
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: username,
		CreatedAt:   now,
	}
	account := &model.Account{
		PlayerID:     player.ID,
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	return s.issue(player, account.Role)
}

// Login checks a username and password and returns a fresh credential
func (s *Service) Login(ctx context.Context, username, password string) (*Credential, error) {
	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, account.PlayerID)
	if err != nil {
		return nil, err
	}

	return s.issue(player, account.Role)
}

// GetPlayer returns the player behind an identity
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// Verify parses a credential and returns the identity it carries
func (s *Service) Verify(token string) (model.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}

	identity := model.Identity{
		PlayerID: model.PlayerID(claims.UserID),
		Role:     model.Role(claims.Role),
	}
	if identity.IsZero() || !identity.Role.Valid() {
		return model.Identity{}, model.ErrUnauthenticated
	}
	return identity, nil
}

// issue signs a credential for a player
func (s *Service) issue(player *model.Player, role model.Role) (*Credential, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.credentialTTL)

	claims := Claims{
		UserID: string(player.ID),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(player.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Credential{
		Token:     token,
		Player:    *player,
		Identity:  model.Identity{PlayerID: player.ID, Role: role},
		ExpiresAt: expiresAt,
	}, nil
}
