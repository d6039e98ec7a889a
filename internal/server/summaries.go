package server

import (
	"fmt"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
)

func (s *Server) ListSummaries(c *gin.Context) {
	auth, ok := authFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req summarydomain.ListRequest
	if err := c.ShouldBindQuery(&req.Pagination); err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_pagination", "invalid pagination parameters"))
		return
	}

	resp, err := s.summarySvc.List(c.Request.Context(), auth.UserID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSummary(c *gin.Context) {
	auth, ok := authFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	record, err := s.summarySvc.Get(c.Request.Context(), auth.UserID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) ExportSummary(c *gin.Context) {
	auth, ok := authFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	format := c.DefaultQuery("format", "json")
	renderer, err := s.exportRegistry.Lookup(format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	record, err := s.summarySvc.Get(ctx, auth.UserID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	plan, err := s.subscriptionSvc.ResolvePlan(ctx, auth.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if renderer.Format() == "pdf" && !plan.Has(plandomain.CapabilityPDFExport) {
		AbortWithError(c, &exportdomain.UnsupportedExportError{Format: "pdf"})
		return
	}

	data, contentType, err := renderer.Render(record, exportdomain.Options{
		Watermark: !plan.Has(plandomain.CapabilityCleanExport),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(record, renderer.Format())))
	c.Data(http.StatusOK, contentType, data)
}

func exportFilename(record *summarydomain.SummaryRecord, format string) string {
	return fmt.Sprintf("summary-%s.%s", record.ID.String(), format)
}
