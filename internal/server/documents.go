package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	processingdomain "github.com/docbrief/docbrief/internal/processing/domain"
	summarizerdomain "github.com/docbrief/docbrief/internal/summarizer/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
)

type uploadResponse struct {
	Summary     *summarizerdomain.Summary `json:"summary"`
	Tier        string                    `json:"tier"`
	PageCount   int                       `json:"page_count"`
	Degraded    bool                      `json:"degraded,omitempty"`
	Watermarked bool                      `json:"watermarked"`
	RecordID    string                    `json:"record_id,omitempty"`
	Usage       *usagedomain.Snapshot     `json:"usage,omitempty"`
}

func (s *Server) UploadDocument(c *gin.Context) {
	auth, ok := authFromContext(c)
	if !ok || auth.Guest {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	s.handleUpload(c, auth)
}

func (s *Server) UploadGuestDocument(c *gin.Context) {
	s.handleUpload(c, entitlementdomain.AuthContext{Guest: true})
}

func (s *Server) handleUpload(c *gin.Context, auth entitlementdomain.AuthContext) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "a document file is required"))
		return
	}

	format, err := extractdomain.ParseFormat(filepath.Ext(file.Filename))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("doc_format", string(format))

	tier, err := requestedTier(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, newValidationError("file", "unreadable_upload", "the upload could not be read"))
		return
	}
	defer src.Close()

	path, err := s.store.Save(src, filepath.Ext(file.Filename))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	outcome, err := s.processingSvc.Process(c.Request.Context(), processingdomain.Request{
		Auth:          auth,
		Path:          path,
		Filename:      filepath.Base(file.Filename),
		Format:        format,
		RequestedTier: tier,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := uploadResponse{
		Summary:     outcome.Summary,
		Tier:        string(outcome.EffectiveTier),
		PageCount:   outcome.PageCount,
		Degraded:    outcome.Degraded,
		Watermarked: outcome.Watermarked,
		Usage:       outcome.Usage,
	}
	if outcome.RecordID != 0 {
		resp.RecordID = outcome.RecordID.String()
	}

	c.JSON(http.StatusOK, resp)
}

func requestedTier(c *gin.Context) (plandomain.Tier, error) {
	raw := strings.ToLower(strings.TrimSpace(c.PostForm("tier")))
	if raw == "" {
		return plandomain.TierShort, nil
	}

	tier := plandomain.Tier(raw)
	if !tier.Valid() {
		return "", newValidationError("tier", "invalid_tier", "tier must be one of short, medium, long")
	}
	return tier, nil
}
