package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
)

type usageLimitsPayload struct {
	Documents int64 `json:"documents"`
	Pages     int64 `json:"pages"`
}

type usageResponse struct {
	Plan   string              `json:"plan"`
	Usage  usagedomain.Snapshot `json:"usage"`
	Limits usageLimitsPayload  `json:"limits"`
}

func (s *Server) GetUsage(c *gin.Context) {
	auth, ok := authFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()

	plan, err := s.subscriptionSvc.ResolvePlan(ctx, auth.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	snapshot, err := s.usageLedger.GetCurrentUsage(ctx, auth.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limits := s.usageLedger.Limits(plan)

	c.JSON(http.StatusOK, usageResponse{
		Plan:  string(plan.ID),
		Usage: snapshot,
		Limits: usageLimitsPayload{
			Documents: limits.Documents,
			Pages:     limits.Pages,
		},
	})
}
