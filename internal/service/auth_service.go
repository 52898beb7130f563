package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/pkg/config"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
)

// userStore is the account surface authentication needs.
type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// AuthService issues and validates access tokens and manages refresh
// sessions.
type AuthService struct {
	store  userStore
	cfg    config.JWTConfig
	logger *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(store userStore, cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	return &AuthService{store: store, cfg: cfg, logger: logger}
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("login failed, unknown email", zap.String("email", req.Email), zap.String("ip", req.IP))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login failed, bad password", zap.String("user_id", user.ID), zap.String("ip", req.IP))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperrors.ErrInactiveAccount
	}

	accessToken, expiresIn, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issueRefreshToken(ctx, user.ID, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		IssuedAt:     time.Now().UTC(),
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// RefreshToken rotates a refresh session and issues a fresh access token.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	session, err := s.store.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid refresh token")
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "refresh token expired")
	}

	user, err := s.store.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid refresh token")
	}
	if !user.Active {
		return nil, apperrors.ErrInactiveAccount
	}

	if err := s.store.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
		s.logger.Warn("refresh token revocation failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	refreshToken, err := s.issueRefreshToken(ctx, user.ID, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}
	accessToken, expiresIn, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		IssuedAt:     time.Now().UTC(),
	}, nil
}

// Logout revokes a refresh session.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.store.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to revoke session")
	}
	return nil
}

// ChangePassword replaces the password and revokes every open session.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Clone(apperrors.ErrNotFound, "user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperrors.Clone(apperrors.ErrValidation, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to update password")
	}
	if err := s.store.RevokeUserRefreshTokens(ctx, userID); err != nil {
		s.logger.Warn("session revocation failed after password change", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) signAccessToken(user *models.User) (string, int64, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", 0, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to sign token")
	}
	return token, int64(s.cfg.Expiration.Seconds()), nil
}

func (s *AuthService) issueRefreshToken(ctx context.Context, userID, ip, userAgent string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to generate token")
	}
	token := hex.EncodeToString(raw)

	session := &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.cfg.RefreshExpiration),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.store.CreateRefreshToken(ctx, session); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to persist session")
	}
	return token, nil
}
