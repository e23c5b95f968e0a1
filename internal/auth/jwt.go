package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"userID"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts an HS256 token whose userID claim matches the id.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Issue signs a token for the id. A zero ttl issues a token without expiry.
func (v *JWTVerifier) Issue(id int64, ttl time.Duration) (string, error) {
	claims := &Claims{UserID: strconv.FormatInt(id, 10)}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func (v *JWTVerifier) Verify(id int64, _ string, proof string) bool {
	var claims Claims
	token, err := jwt.ParseWithClaims(proof, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return false
	}
	return claims.UserID == strconv.FormatInt(id, 10)
}
