package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

const actorKey = "actor"

// accessClaims полезная нагрузка access-токена бэкенда
type accessClaims struct {
	jwt.RegisteredClaims
	UserID   json_types.ID `json:"user_id"`
	UserType string        `json:"user_type"`
}

// jwtAuth разбирает Bearer-токен, кладет Actor в gin.Context и токен в
// контекст запроса для вызовов бэкенда. С пустым секретом подпись не
// проверяется: токен все равно проверит бэкенд при первом же вызове
func jwtAuth(secret string, logger out.LoggerPort) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			abortWithError(ctx, http.StatusUnauthorized, "authentication_missing", domain.ErrAuthenticationMissing.Error())
			return
		}

		claims, err := parseClaims(parser, token, secret)
		if err != nil {
			logger.Warn("http.auth.invalid_token", out.LogFields{
				"path":  ctx.FullPath(),
				"error": err.Error(),
			})
			abortWithError(ctx, http.StatusUnauthorized, "authentication_missing", "invalid or expired token")
			return
		}

		actor := domain.Actor{ID: claims.UserID, Role: domain.Role(strings.ToLower(claims.UserType))}
		if actor.ID.IsEmpty() {
			abortWithError(ctx, http.StatusUnauthorized, "authentication_missing", "token has no user_id")
			return
		}

		ctx.Set(actorKey, actor)
		ctx.Request = ctx.Request.WithContext(
			domain.WithCredential(ctx.Request.Context(), domain.Credential{AccessToken: token}),
		)
		ctx.Next()
	}
}

func parseClaims(parser *jwt.Parser, token, secret string) (*accessClaims, error) {
	claims := &accessClaims{}

	if secret == "" {
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return nil, err
		}
		// ParseUnverified не проверяет срок жизни
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(timeNow()) {
			return nil, jwt.ErrTokenExpired
		}
		return claims, nil
	}

	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// requireRole пропускает только указанную роль
func requireRole(role domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if actorFrom(ctx).Role != role {
			abortWithError(ctx, http.StatusForbidden, "forbidden", fmt.Sprintf("only %s may do this", role))
			return
		}
		ctx.Next()
	}
}

func actorFrom(ctx *gin.Context) domain.Actor {
	if v, ok := ctx.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}
