package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	obscontext "github.com/docbrief/docbrief/internal/observability/context"
	userdomain "github.com/docbrief/docbrief/internal/user/domain"
)

const contextAuthKey = "auth_context"

// AuthRequired authenticates requests with a bearer token. Only the SHA-256
// digest of a token is ever stored, so lookup happens by digest.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		digest := sha256.Sum256([]byte(parts[1]))
		hash := hex.EncodeToString(digest[:])

		var user userdomain.User
		err := s.db.WithContext(c.Request.Context()).
			Where("token_hash = ? AND active = ?", hash, true).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if subtle.ConstantTimeCompare([]byte(user.TokenHash), []byte(hash)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := obscontext.WithUserID(c.Request.Context(), user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextAuthKey, entitlementdomain.AuthContext{UserID: user.ID})
		c.Next()
	}
}

// GuestRateLimit throttles the anonymous upload endpoint per client IP. A
// nil or disabled limiter passes everything through.
func (s *Server) GuestRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.guestLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil || res.Allowed {
			c.Next()
			return
		}

		retryAfter := int(res.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		AbortWithError(c, ErrRateLimited)
	}
}

func authFromContext(c *gin.Context) (entitlementdomain.AuthContext, bool) {
	v, ok := c.Get(contextAuthKey)
	if !ok {
		return entitlementdomain.AuthContext{}, false
	}
	auth, ok := v.(entitlementdomain.AuthContext)
	return auth, ok
}
