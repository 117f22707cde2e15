package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adpilot/adpilot/internal/adschema"
	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/internal/gateway"
	"github.com/adpilot/adpilot/internal/session"
	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/internal/workflow"
	"github.com/adpilot/adpilot/pkg/logx"
	"github.com/adpilot/adpilot/pkg/metrics"
	"github.com/adpilot/adpilot/pkg/rmq"
)

type storeAPI interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	InsertCampaign(ctx context.Context, tx *sql.Tx, campaignID, platform, objective string, budget float64) (int64, error)
	InsertAd(ctx context.Context, tx *sql.Tx, campaignID, adID, name string, mediaCount int) (int64, error)
	SetCampaignStatus(ctx context.Context, campaignID, status string) error
	GetCampaign(ctx context.Context, campaignID string) (store.CampaignRow, error)
	GetCampaignStats(ctx context.Context, campaignID string) (store.CampaignStats, error)
	ListCampaigns(ctx context.Context, limit, offset int) ([]store.CampaignRow, []store.CampaignStats, error)
}

type publisherAPI interface {
	PublishJSON(ctx context.Context, body []byte) error
}

type controlAPI interface {
	Control(ctx context.Context, campaignID string, action gateway.ControlAction) (string, error)
}

type storeAdapter struct{ *store.Store }
type publisherAdapter struct{ *rmq.Publisher }

type Handlers struct {
	Store    storeAPI
	Pub      publisherAPI
	Gw       controlAPI
	Sessions *session.Registry
}

func NewHandlers(s *store.Store, pub *rmq.Publisher, gw *gateway.Client, sessions *session.Registry) *Handlers {
	return &Handlers{Store: &storeAdapter{s}, Pub: &publisherAdapter{pub}, Gw: gw, Sessions: sessions}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handlers) StartSession(c *gin.Context) {
	id, eng := h.Sessions.Create()
	c.JSON(http.StatusCreated, SessionResp{SessionID: id, State: eng.CurrentState()})
}

func (h *Handlers) GetState(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, StateResp{Status: "ok", State: eng.CurrentState()})
}

func (h *Handlers) SubmitPlatformObjective(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	var req PlatformObjectiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	snap, err := eng.SubmitPlatformAndObjective(ctx, req.Platform, req.Objective, req.Budget, req.TargetAudience, req.Industry)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) SubmitCampaignDetails(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	var req CampaignDetailsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	snap, err := eng.SubmitCampaignDetails(ctx, workflow.CampaignDetailsInput{
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		BiddingStrategy:   req.BiddingStrategy,
		PlacementSettings: req.PlacementSettings,
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	// The record trail is advisory; the campaign already exists on the
	// gateway, so a store failure is logged rather than surfaced.
	if snap.Campaign != nil {
		err := h.Store.WithTx(ctx, func(tx *sql.Tx) error {
			_, err := h.Store.InsertCampaign(ctx, tx, snap.CampaignID,
				string(snap.Campaign.Platform), snap.Campaign.Objective, snap.Campaign.Budget)
			return err
		})
		if err != nil {
			logx.L().Errorw("campaign_record_error", "campaign_id", snap.CampaignID, "error", err)
		}
	}

	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) SubmitAdDraft(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	var req AdDraftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: err.Error()})
		return
	}

	snap, err := eng.SubmitAdDraft(workflow.AdInput{
		AdName:         req.AdName,
		PrimaryText:    req.PrimaryText,
		Headline:       req.Headline,
		Description:    req.Description,
		DestinationURL: req.DestinationURL,
		CallToAction:   req.CallToAction,
		PlatformData:   req.PlatformData,
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) FinalizeAd(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	snap, err := eng.FinalizeAd(ctx)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	if snap.Ad != nil && len(snap.AdIDs) > 0 {
		adID := snap.AdIDs[len(snap.AdIDs)-1]
		err := h.Store.WithTx(ctx, func(tx *sql.Tx) error {
			_, err := h.Store.InsertAd(ctx, tx, snap.CampaignID, adID, snap.Ad.AdName, len(snap.Ad.MediaIDs))
			return err
		})
		if err != nil {
			logx.L().Errorw("ad_record_error", "campaign_id", snap.CampaignID, "ad_id", adID, "error", err)
		}
	}

	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) AttachMedia(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: err.Error()})
		return
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	asset, err := eng.AttachMedia(ctx, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, MediaResp{Status: "ok", Asset: asset, State: eng.CurrentState()})
}

func (h *Handlers) RemoveMedia(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	snap, err := eng.RemoveMedia(c.Param("assetID"))
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) SkipToPublish(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	snap, err := eng.SkipToPublish()
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) DecidePublish(c *gin.Context) {
	eng, ok := h.engine(c)
	if !ok {
		return
	}
	var req PublishDecisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	snap, err := eng.DecidePublish(ctx, req.Confirm)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	switch snap.State {
	case workflow.StateDraftSaved:
		if snap.CampaignID != "" {
			if err := h.Store.SetCampaignStatus(ctx, snap.CampaignID, "draft_saved"); err != nil {
				logx.L().Errorw("campaign_status_error", "campaign_id", snap.CampaignID, "error", err)
			}
		}
	case workflow.StatePublished:
		h.emitPublishEvent(snap)
	}

	c.JSON(http.StatusOK, StateResp{Status: "ok", State: snap})
}

func (h *Handlers) AbandonSession(c *gin.Context) {
	h.Sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handlers) emitPublishEvent(snap workflow.Snapshot) {
	ev := campaign.PublishEvent{
		CampaignID:         snap.CampaignID,
		ExternalCampaignID: snap.ExternalCampaignID,
		PublishedAt:        time.Now().UTC(),
	}
	if snap.Campaign != nil {
		ev.Platform = snap.Campaign.Platform
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logx.L().Errorw("publish_event_marshal_error", "campaign_id", ev.CampaignID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Pub.PublishJSON(ctx, payload); err != nil {
		logx.L().Errorw("publish_event_error", "campaign_id", ev.CampaignID, "error", err)
		return
	}
	metrics.PublishedEventsTotal.Inc()
}

func (h *Handlers) ListCampaigns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rows, stats, err := h.Store.ListCampaigns(ctx, limit, offset)
	if err != nil {
		logx.L().Errorw("list_campaigns_error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResp{Status: "error", Error: "list error"})
		return
	}

	out := make([]CampaignListItem, 0, len(rows))
	for i, r := range rows {
		item := CampaignListItem{
			CampaignID:         r.CampaignID,
			Platform:           r.Platform,
			Objective:          r.Objective,
			Budget:             r.Budget,
			Status:             r.Status,
			ExternalCampaignID: r.ExternalCampaignID,
			CreatedAt:          r.CreatedAt,
			PublishedAt:        r.PublishedAt,
		}
		item.Stats.Ads = stats[i].Ads
		item.Stats.MediaTotal = stats[i].MediaTotal
		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handlers) GetCampaign(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	camp, err := h.Store.GetCampaign(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, ErrorResp{Status: "not_found", Error: "campaign not found"})
		return
	}
	if err != nil {
		logx.L().Errorw("get_campaign_error", "campaign_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResp{Status: "error", Error: "campaign error"})
		return
	}

	stats, err := h.Store.GetCampaignStats(ctx, id)
	if err != nil {
		logx.L().Errorw("get_campaign_stats_error", "campaign_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResp{Status: "error", Error: "stats error"})
		return
	}

	item := CampaignListItem{
		CampaignID:         camp.CampaignID,
		Platform:           camp.Platform,
		Objective:          camp.Objective,
		Budget:             camp.Budget,
		Status:             camp.Status,
		ExternalCampaignID: camp.ExternalCampaignID,
		CreatedAt:          camp.CreatedAt,
		PublishedAt:        camp.PublishedAt,
	}
	item.Stats.Ads = stats.Ads
	item.Stats.MediaTotal = stats.MediaTotal

	c.JSON(http.StatusOK, item)
}

// ControlCampaign pauses or resumes a published campaign on the external
// platform and mirrors the new status into the record trail.
func (h *Handlers) ControlCampaign(c *gin.Context) {
	id := c.Param("id")
	var req ControlReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResp{Status: "bad_request", Error: err.Error()})
		return
	}
	action := gateway.ControlAction(req.Action)
	if action != gateway.ControlPause && action != gateway.ControlResume {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrResp{
			Status: "validation_error",
			Errors: []adschema.FieldError{{Field: "action", Reason: adschema.ReasonInvalidFormat}},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	camp, err := h.Store.GetCampaign(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, ErrorResp{Status: "not_found", Error: "campaign not found"})
		return
	}
	if err != nil {
		logx.L().Errorw("get_campaign_error", "campaign_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResp{Status: "error", Error: "campaign error"})
		return
	}
	if camp.ExternalCampaignID == "" {
		c.JSON(http.StatusConflict, ErrorResp{Status: "conflict", Error: "campaign has not been published"})
		return
	}

	msg, err := h.Gw.Control(ctx, id, action)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	status := "published"
	if action == gateway.ControlPause {
		status = "paused"
	}
	if err := h.Store.SetCampaignStatus(ctx, id, status); err != nil {
		logx.L().Errorw("campaign_status_error", "campaign_id", id, "error", err)
	}

	c.JSON(http.StatusOK, ControlResp{Status: "ok", Message: msg})
}

func (h *Handlers) engine(c *gin.Context) (*workflow.Engine, bool) {
	eng, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResp{Status: "not_found", Error: "session not found"})
		return nil, false
	}
	return eng, true
}

func writeWorkflowError(c *gin.Context, err error) {
	var vErr *workflow.ValidationError
	var gwErr *gateway.Error
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, ValidationErrResp{Status: "validation_error", Errors: vErr.Fields})
	case errors.Is(err, workflow.ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, ErrorResp{Status: "unsupported_media_type", Error: err.Error()})
	case errors.Is(err, workflow.ErrTransitionInFlight), errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResp{Status: "conflict", Error: err.Error()})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, ErrorResp{Status: "remote_error", Error: gwErr.Message})
	default:
		c.JSON(http.StatusBadGateway, ErrorResp{Status: "remote_error", Error: err.Error()})
	}
}
