package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"PocketTrade/pkg/grpcx"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errMissingToken = errors.New("missing bearer token")

// authMiddleware verifica il bearer token (HS256) e mette l'utente nel context della richiesta.
// Il subject del token e' l'id del profilo.
func authMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Request = c.Request.WithContext(grpcx.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func userFromHeader(header string, secret []byte) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, errMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}
