package middleware

import (
	"strings"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// Headers identifying the acting user. Authentication happens upstream;
// the service trusts what the gateway forwards.
const (
	UserIDHeader    = "X-User-ID"
	UserRolesHeader = "X-User-Roles"

	actorKey = "actor"
	// MaxUserIDLength bounds, in characters, the user header copied into
	// logs and spans
	MaxUserIDLength = 140
)

// Actor reads the acting user from the request headers and stores it in the
// gin context. Roles are a comma separated list.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := customerlock.Actor{User: strings.TrimSpace(c.GetHeader(UserIDHeader))}
		if len(actor.User) > MaxUserIDLength {
			actor.User = truncateRunes(actor.User, MaxUserIDLength)
		}
		for role := range strings.SplitSeq(c.GetHeader(UserRolesHeader), ",") {
			if role = strings.TrimSpace(role); role != "" {
				actor.Roles = append(actor.Roles, role)
			}
		}
		c.Set(actorKey, actor)

		if actor.User != "" {
			ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), actor.User)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// truncateRunes cuts s after n characters, never inside a UTF-8 sequence
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// GetActor returns the actor stored by Actor, or the zero actor
func GetActor(c *gin.Context) customerlock.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(customerlock.Actor); ok {
			return actor
		}
	}
	return customerlock.Actor{}
}
