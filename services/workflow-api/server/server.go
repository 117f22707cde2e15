package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adpilot/adpilot/docs"
	"github.com/adpilot/adpilot/pkg/metrics"
)

func NewHTTPServer(addr string, h *Handlers, maxUploadBytes int64) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery(), Observability())
	if maxUploadBytes > 0 {
		r.MaxMultipartMemory = maxUploadBytes
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/sessions", h.StartSession)
	r.GET("/sessions/:id/state", h.GetState)
	r.POST("/sessions/:id/platform-objective", h.SubmitPlatformObjective)
	r.POST("/sessions/:id/campaign", h.SubmitCampaignDetails)
	r.POST("/sessions/:id/ad", h.SubmitAdDraft)
	r.POST("/sessions/:id/ad/submit", h.FinalizeAd)
	r.POST("/sessions/:id/media", h.AttachMedia)
	r.DELETE("/sessions/:id/media/:assetID", h.RemoveMedia)
	r.POST("/sessions/:id/skip-to-publish", h.SkipToPublish)
	r.POST("/sessions/:id/publish", h.DecidePublish)
	r.DELETE("/sessions/:id", h.AbandonSession)

	r.GET("/campaigns", h.ListCampaigns)
	r.GET("/campaigns/:id", h.GetCampaign)
	r.POST("/campaigns/:id/control", h.ControlCampaign)

	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", docs.WorkflowSwaggerHTML)
	})
	r.GET("/docs/workflow-api/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", docs.WorkflowOpenAPI)
	})

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}
