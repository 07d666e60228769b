package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/filmotheque/movies-api/config"
)

// TokenService mints signed access tokens embedding identity and role scopes.
type TokenService interface {
	GenerateToken(userID int64, firstName, lastName, mail string, roles []string) (string, error)
}

var _ TokenService = (*JWTTokenService)(nil)

type JWTTokenService struct {
	cfg config.JWTConfig
}

func NewJWTTokenService(cfg config.JWTConfig) *JWTTokenService {
	return &JWTTokenService{cfg: cfg}
}

// GenerateToken mints an HS512-signed token carrying the user's identity and
// scopes, expiring after the configured lifetime (4 hours by default).
func (s *JWTTokenService) GenerateToken(userID int64, firstName, lastName, mail string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Mail:      mail,
		Scope:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
