package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/cardpayhq/cardpay-backend/internal/config"
	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// SessionData is the identity bound into every token.
type SessionData struct {
	UserID    uint `json:"user_id"`
	SessionID uint `json:"session_id"`
}

type TokenClaims struct {
	Data SessionData `json:"data"`
	jwt.RegisteredClaims
}

// TokenResult is the tri-state outcome of verification. Malformed and expired
// tokens are expected inputs, not errors: Valid=false Expired=false means the
// token is garbage, Expired=true means the caller may attempt a reissue.
// Claims is only set when Valid is true.
type TokenResult struct {
	Valid   bool
	Expired bool
	Claims  *TokenClaims
}

// SessionService issues and verifies signed tokens and tracks active sessions.
type SessionService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewSessionService(db *gorm.DB, cfg *config.Config) *SessionService {
	return &SessionService{db: db, cfg: cfg}
}

func (s *SessionService) NewSession(userID uint, ip, device *string) (*models.Session, error) {
	session := models.Session{
		UserID:   userID,
		IP:       ip,
		Device:   device,
		IsActive: true,
	}

	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

func (s *SessionService) GetSession(id uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

func (s *SessionService) DeactivateSession(id uint) (*models.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(session).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate session: %w", err)
	}
	return session, nil
}

// SignToken signs the claims with the shared secret. Signing is stateless;
// the session referenced by data is not consulted.
func (s *SessionService) SignToken(data SessionData, kind TokenKind) (string, error) {
	ttl := s.cfg.AccessTokenTTL
	if kind == TokenRefresh {
		ttl = s.cfg.RefreshTokenTTL
	}

	now := time.Now()
	claims := TokenClaims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *SessionService) VerifyToken(tokenString string) TokenResult {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenResult{Expired: true}
		}
		return TokenResult{}
	}
	if !token.Valid {
		return TokenResult{}
	}

	return TokenResult{Valid: true, Claims: claims}
}

// ReissueAccessToken exchanges a valid refresh token for a fresh access token,
// provided the embedded session still exists and is active for the embedded
// user. Any failure yields an empty token, never an error the caller must
// distinguish: the request simply falls through to unauthenticated.
func (s *SessionService) ReissueAccessToken(refreshToken string) (string, error) {
	result := s.VerifyToken(refreshToken)
	if !result.Valid || result.Claims.Data.UserID == 0 || result.Claims.Data.SessionID == 0 {
		return "", nil
	}

	data := result.Claims.Data

	var session models.Session
	err := s.db.
		Where("id = ? AND user_id = ? AND is_active = ?", data.SessionID, data.UserID, true).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load session for reissue: %w", err)
	}

	return s.SignToken(data, TokenAccess)
}
