package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated admin's id
type Claims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 admin tokens
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(adminID uuid.UUID) (string, error) {
	now := m.now()
	claims := Claims{
		AdminID: adminID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse validates signature and expiry and returns the admin id
func (m *TokenManager) Parse(token string) (uuid.UUID, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}

	adminID, err := uuid.Parse(claims.AdminID)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}
	return adminID, nil
}
