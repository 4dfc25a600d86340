package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionInfo summarizes the stored access token for display and stale
// session detection. The token is issued and verified by the portal backend;
// the client only inspects its registered claims.
type SessionInfo struct {
	Subject   string
	ExpiresAt time.Time
	Expired   bool
}

// InspectToken parses the access token without verifying its signature and
// reports its expiry. Any parse failure is reported as an expired session
// rather than an error: an unreadable token is treated the same as a stale
// one.
func InspectToken(token string, now time.Time) SessionInfo {
	if token == "" {
		return SessionInfo{Expired: true}
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return SessionInfo{Expired: true}
	}

	info := SessionInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.Expired = now.After(claims.ExpiresAt.Time)
	}
	return info
}
