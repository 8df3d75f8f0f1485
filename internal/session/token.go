package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspecciona la credencial persistida sin verificar firma.
// Si es un JWT con exp en el pasado, la sesion restaurada ya no sirve.
// Credenciales opacas (no JWT, o JWT sin exp) se aceptan tal cual.
func tokenExpired(token string, now time.Time) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}
