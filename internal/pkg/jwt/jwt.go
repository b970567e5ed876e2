package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const streamTokenTTL = 5 * time.Minute

type Service interface {
	GenerateAccessToken(accountID string, role auth.Role) (token string, expiresAt int64, err error)
	GenerateStreamToken(accountID string, role auth.Role) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (auth.Identity, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpiration: expiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) GenerateAccessToken(accountID string, role auth.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"account_id": accountID,
		"role":       string(role),
		"type":       string(auth.TokenAccess),
		"exp":        expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateStreamToken issues a short-lived token for EventSource clients,
// which cannot send an Authorization header.
func (j *JWTService) GenerateStreamToken(accountID string, role auth.Role) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(streamTokenTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"account_id": accountID,
		"role":       string(role),
		"type":       string(auth.TokenStream),
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(streamTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (auth.Identity, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return IdentityFromClaims(claims, auth.TokenStream)
}

// IdentityFromClaims extracts the acting account from verified claims of
// the expected token type.
func IdentityFromClaims(claims map[string]interface{}, want auth.TokenType) (auth.Identity, error) {
	tokenType, ok := claims["type"].(string)
	if !ok || auth.TokenType(tokenType) != want {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	role, ok := claims["role"].(string)
	if !ok || !auth.Role(role).Valid() {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	return auth.Identity{AccountID: accountID, Role: auth.Role(role)}, nil
}
