package access

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 12 * time.Hour

// TokenService emite y valida los tokens de mesa usando JWT HS256.
type TokenService struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
}

// NewTokenService crea una nueva instancia del servicio de tokens.
func NewTokenService(secretKey string, tokenTTL time.Duration) *TokenService {
	if tokenTTL == 0 {
		tokenTTL = defaultTokenTTL
	}
	return &TokenService{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
		issuer:    "fateweaver",
	}
}

// Claims personalizados del token de mesa
type tableJWTClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// MintTableToken genera un token de mesa firmado.
func (s *TokenService) MintTableToken(role Role) (*TableToken, error) {
	if role == "" {
		role = RolePlayer
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := tableJWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   "table",
			Audience:  []string{"fateweaver-api"},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return nil, ErrTokenGeneration(err)
	}

	return &TableToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateTableToken valida y decodifica un token de mesa.
func (s *TokenService) ValidateTableToken(tokenString string) (*TableClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tableJWTClaims{}, func(token *jwt.Token) (any, error) {
		// Verificar el método de firma
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, ErrUnauthorized().WithDetail("error", err.Error())
	}

	if !token.Valid {
		return nil, ErrUnauthorized().WithDetail("error", "token is invalid")
	}

	claims, ok := token.Claims.(*tableJWTClaims)
	if !ok {
		return nil, ErrUnauthorized().WithDetail("error", "invalid claims type")
	}

	return &TableClaims{
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
