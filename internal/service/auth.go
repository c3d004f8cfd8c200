package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/hash"
	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/mykafka"
	"github.com/essencia/shop-api/internal/repo"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type AuthService struct {
	Repo          *repo.GormRepo
	Producer      mykafka.Publisher
	JWTSecret     []byte
	RefreshSecret []byte
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

func (svc *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	err = svc.Repo.InTx(ctx, func(txr *repo.GormRepo) error {
		if err := txr.CreateUser(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: user already exists", ErrConflict)
			}
			return err
		}
		return txr.CreateProfile(ctx, &models.Profile{UserID: user.ID})
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, svc.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (svc *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := svc.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	access, err := SignAccessToken(user.ID, user.Role, svc.JWTSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := SignRefreshToken(user.ID, user.Role, svc.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := svc.saveRefreshToken(ctx, refresh, user.ID, user.Role); err != nil {
		return nil, err
	}

	publish(ctx, svc.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (svc *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	return svc.Repo.RevokeRefreshToken(ctx, rawRefresh)
}

// Rotate validates a refresh token against the store, revokes it and
// issues a fresh access/refresh pair.
func (svc *AuthService) Rotate(ctx context.Context, rawRefresh string) (string, string, jwt.MapClaims, error) {
	claims, err := svc.ValidateRefresh(ctx, rawRefresh)
	if err != nil {
		return "", "", nil, err
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return "", "", nil, fmt.Errorf("%w: invalid subject", ErrForbidden)
	}
	userID := uint(sub)
	role, _ := claims["role"].(string)

	newAccess, err := SignAccessToken(userID, role, svc.JWTSecret)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := SignRefreshToken(userID, role, svc.RefreshSecret)
	if err != nil {
		return "", "", nil, err
	}

	if err := svc.Repo.RevokeRefreshToken(ctx, rawRefresh); err != nil {
		return "", "", nil, err
	}
	if err := svc.saveRefreshToken(ctx, newRefresh, userID, role); err != nil {
		return "", "", nil, err
	}
	return newAccess, newRefresh, claims, nil
}

func (svc *AuthService) ValidateRefresh(ctx context.Context, rawToken string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return svc.RefreshSecret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrForbidden)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: cannot parse claims", ErrForbidden)
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, fmt.Errorf("%w: not a refresh token", ErrForbidden)
	}

	stored, err := svc.Repo.GetRefreshToken(ctx, rawToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: refresh token not found", ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		return nil, fmt.Errorf("%w: refresh token revoked", ErrForbidden)
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, fmt.Errorf("%w: refresh token expired", ErrForbidden)
	}
	return claims, nil
}

func (svc *AuthService) saveRefreshToken(ctx context.Context, token string, userID uint, role string) error {
	return svc.Repo.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(RefreshTokenTTL).Unix(),
	})
}

func SignAccessToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func SignRefreshToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(RefreshTokenTTL).Unix(),
		"typ":  "refresh",
		"jti":  uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseAccessToken verifies an access token and returns the actor it
// names.
func ParseAccessToken(raw string, secret []byte) (Actor, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !t.Valid {
		return Actor{}, fmt.Errorf("%w: invalid token", ErrForbidden)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, fmt.Errorf("%w: cannot parse claims", ErrForbidden)
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return Actor{}, fmt.Errorf("%w: invalid subject", ErrForbidden)
	}
	role, _ := claims["role"].(string)
	return Actor{ID: uint(sub), Admin: role == "admin"}, nil
}
