package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims carried in every access token. Permissions are embedded so the
// guard layer can decide without a database lookup on every request.
type Claims struct {
	UserID              string   `json:"user_id"`
	Email               string   `json:"email"`
	Role                string   `json:"role"`
	Permissions         []string `json:"permissions,omitempty"`
	NeedsPasswordChange bool     `json:"needs_password_change,omitempty"`
	NeedsTwoFactor      bool     `json:"needs_two_factor,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed token carrying the given claims. The
// registered expiry and issue timestamps are set here; everything else,
// including the remediation flags, comes from the caller.
func GenerateToken(claims Claims, secret string, expiry time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
