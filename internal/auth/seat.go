package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid seat token")

// SeatClaims binds a player id to one table.
type SeatClaims struct {
	TableID  string `json:"table_id"`
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// SeatSigner issues and verifies HS256 seat tokens.
type SeatSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSeatSigner(secret string, ttl time.Duration) *SeatSigner {
	return &SeatSigner{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for playerID at tableID.
func (s *SeatSigner) Issue(tableID, playerID string) (string, error) {
	now := time.Now()
	claims := SeatClaims{
		TableID:  tableID,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign seat token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and that it was issued for tableID.
func (s *SeatSigner) Verify(token, tableID string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TableID != tableID || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
