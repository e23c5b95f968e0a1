package auth

import (
	"fmt"
)

// Modes accepted by New.
const (
	ModeNone = "none"
	ModeHMAC = "hmac"
	ModeJWT  = "jwt"
)

// Verifier checks that a connecting client owns the identity it claims.
type Verifier interface {
	Verify(id int64, username, proof string) bool
}

// AllowAll accepts every claim. Development only.
type AllowAll struct{}

func (AllowAll) Verify(int64, string, string) bool { return true }

// New builds the verifier for a configured mode.
func New(mode, secret string) (Verifier, error) {
	switch mode {
	case ModeNone, "":
		return AllowAll{}, nil
	case ModeHMAC:
		return NewHMACVerifier(secret), nil
	case ModeJWT:
		return NewJWTVerifier(secret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}
