// Package workflow implements the campaign creation state machine. One
// engine instance exists per operator session and exclusively owns the
// in-progress drafts, the guidance packet and the media ledger.
package workflow

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adpilot/adpilot/internal/adschema"
	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/pkg/metrics"
)

type GuidanceRequest struct {
	Platform       campaign.Platform
	Objective      string
	Budget         float64
	TargetAudience campaign.TargetAudience
	Industry       string
}

// GuidanceProvider returns recommendations for a platform/objective/budget
// combination. Failures are non-fatal to the workflow.
type GuidanceProvider interface {
	RequestGuidance(ctx context.Context, req GuidanceRequest) (campaign.GuidancePacket, error)
}

type PublishOutcome struct {
	Message            string
	ExternalCampaignID string
}

// Gateway persists campaigns and ads on the external ad network. Every
// method is a remote call; the engine never retries on its own.
type Gateway interface {
	CreateCampaign(ctx context.Context, draft campaign.CampaignDraft) (string, error)
	CreateAd(ctx context.Context, draft campaign.AdDraft) (string, error)
	UploadMedia(ctx context.Context, platform campaign.Platform, campaignID, fileName, contentType string, file io.Reader) (campaign.MediaAsset, error)
	Publish(ctx context.Context, campaignID string) (PublishOutcome, error)
}

type CampaignDetailsInput struct {
	StartDate         time.Time
	EndDate           *time.Time
	BiddingStrategy   string
	PlacementSettings campaign.PlacementSettings
}

type AdInput struct {
	AdName         string
	PrimaryText    string
	Headline       string
	Description    string
	DestinationURL string
	CallToAction   string
	PlatformData   campaign.PlatformData
}

// Snapshot is the view-model handed to the presentation layer: a pure
// projection of the workflow state, safe to render without touching the
// engine again.
type Snapshot struct {
	State              State                    `json:"state"`
	Campaign           *campaign.CampaignDraft  `json:"campaign,omitempty"`
	CampaignID         string                   `json:"campaign_id,omitempty"`
	Ad                 *campaign.AdDraft        `json:"ad,omitempty"`
	AdIDs              []string                 `json:"ad_ids,omitempty"`
	Guidance           *campaign.GuidancePacket `json:"guidance,omitempty"`
	Media              []campaign.MediaAsset    `json:"media,omitempty"`
	ExternalCampaignID string                   `json:"external_campaign_id,omitempty"`
	PublishMessage     string                   `json:"publish_message,omitempty"`
}

type Engine struct {
	mu        sync.Mutex
	state     State
	inFlight  bool
	abandoned bool

	draft    *campaign.CampaignDraft
	ad       *campaign.AdDraft
	guidance *campaign.GuidancePacket
	ledger   MediaLedger
	industry string

	campaignID         string
	adIDs              []string
	externalCampaignID string
	publishMessage     string

	gw         Gateway
	guide      GuidanceProvider
	log        *zap.SugaredLogger
	lastActive time.Time
}

func NewEngine(gw Gateway, guide GuidanceProvider, log *zap.SugaredLogger) *Engine {
	return &Engine{
		state:      StatePlatformSelect,
		gw:         gw,
		guide:      guide,
		log:        log,
		lastActive: time.Now(),
	}
}

func (e *Engine) CurrentState() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// SubmitPlatformAndObjective fixes the platform/objective/budget triple.
// Permitted until the gateway has confirmed a campaign id; a change
// discards any guidance packet produced for the previous triple.
func (e *Engine) SubmitPlatformAndObjective(ctx context.Context, platformRaw, objective string, budget float64, audience campaign.TargetAudience, industry string) (Snapshot, error) {
	e.mu.Lock()
	if err := e.guardLocked(StatePlatformSelect, StateObjectiveSelect, StateGuidanceReview, StateCampaignDetails); err != nil {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	var fields []adschema.FieldError
	platform, ok := campaign.ParsePlatform(platformRaw)
	if !ok {
		fields = append(fields, adschema.FieldError{Field: "platform", Reason: adschema.ReasonInvalidFormat})
	}
	if objective == "" {
		fields = append(fields, adschema.FieldError{Field: "objective", Reason: adschema.ReasonMissing})
	}
	if budget <= 0 {
		fields = append(fields, adschema.FieldError{Field: "budget", Reason: adschema.ReasonInvalidFormat})
	}
	if len(fields) > 0 {
		metrics.WorkflowValidationFailures.WithLabelValues(string(e.state)).Inc()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, &ValidationError{Fields: fields}
	}

	if e.draft == nil {
		e.draft = &campaign.CampaignDraft{}
	}
	e.draft.Platform = platform
	e.draft.Objective = objective
	e.draft.Budget = budget
	e.draft.TargetAudience = audience
	e.industry = industry
	if e.guidance != nil && !e.guidance.Matches(platform, objective, budget) {
		e.guidance = nil
	}
	if e.state == StatePlatformSelect {
		e.setStateLocked(StateObjectiveSelect)
	}

	if budget < campaign.GuidanceMinBudget {
		e.guidance = nil
		e.setStateLocked(StateCampaignDetails)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}

	if e.guidance != nil {
		// A matching packet survived the resubmission; no second request
		// for the same combination.
		e.setStateLocked(StateGuidanceReview)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}

	req := GuidanceRequest{
		Platform:       platform,
		Objective:      objective,
		Budget:         budget,
		TargetAudience: audience,
		Industry:       industry,
	}
	e.inFlight = true
	e.mu.Unlock()

	packet, err := e.guide.RequestGuidance(ctx, req)

	e.mu.Lock()
	e.inFlight = false
	if e.abandoned {
		e.log.Infow("late_guidance_dropped", "platform", platform, "objective", objective)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, ErrInvalidTransition
	}
	if err != nil {
		e.log.Warnw("guidance_unavailable",
			"platform", platform, "objective", objective, "error", err)
		e.setStateLocked(StateCampaignDetails)
	} else {
		e.guidance = &packet
		e.setStateLocked(StateGuidanceReview)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	return snap, nil
}

// SubmitCampaignDetails completes the campaign draft, validates it and
// asks the gateway to create the campaign. On success the draft becomes
// immutable and an ad draft bound to the confirmed campaign id is opened.
func (e *Engine) SubmitCampaignDetails(ctx context.Context, in CampaignDetailsInput) (Snapshot, error) {
	e.mu.Lock()
	if err := e.guardLocked(StateGuidanceReview, StateCampaignDetails); err != nil {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	draft := *e.draft
	draft.StartDate = in.StartDate
	draft.EndDate = in.EndDate
	draft.BiddingStrategy = in.BiddingStrategy
	if draft.BiddingStrategy == "" && e.guidance != nil {
		draft.BiddingStrategy = e.guidance.BiddingStrategy
	}
	draft.PlacementSettings = in.PlacementSettings

	if res := adschema.ValidateCampaign(draft); !res.Valid() {
		metrics.WorkflowValidationFailures.WithLabelValues(string(e.state)).Inc()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, &ValidationError{Fields: res.Errors}
	}

	e.inFlight = true
	e.mu.Unlock()

	campaignID, err := e.gw.CreateCampaign(ctx, draft)

	e.mu.Lock()
	e.inFlight = false
	if e.abandoned {
		e.log.Infow("late_campaign_dropped", "campaign_id", campaignID)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, ErrInvalidTransition
	}
	if err != nil {
		e.log.Errorw("create_campaign_error", "platform", draft.Platform, "error", err)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	*e.draft = draft
	e.campaignID = campaignID
	e.ad = &campaign.AdDraft{CampaignID: campaignID, Platform: draft.Platform}
	e.setStateLocked(StateCampaignCreated)
	e.setStateLocked(StateAdComposition)
	e.log.Infow("campaign_created", "campaign_id", campaignID, "platform", draft.Platform)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	return snap, nil
}

// SubmitAdDraft captures the ad copy. Everything except the media
// requirement is enforced here; the media requirement is re-checked at
// submission, after the upload step.
func (e *Engine) SubmitAdDraft(in AdInput) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guardLocked(StateAdComposition, StateMediaUpload); err != nil {
		return e.snapshotLocked(), err
	}

	draft := *e.ad
	draft.AdName = in.AdName
	draft.PrimaryText = in.PrimaryText
	draft.Headline = in.Headline
	draft.Description = in.Description
	draft.DestinationURL = in.DestinationURL
	draft.CallToAction = in.CallToAction
	draft.PlatformData = in.PlatformData

	schema, err := adschema.Get(draft.Platform)
	if err != nil {
		return e.snapshotLocked(), err
	}
	res := adschema.Validate(schema, draft)
	fields := make([]adschema.FieldError, 0, len(res.Errors))
	for _, f := range res.Errors {
		if f.Field == "media" {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) > 0 {
		metrics.WorkflowValidationFailures.WithLabelValues(string(e.state)).Inc()
		return e.snapshotLocked(), &ValidationError{Fields: fields}
	}

	*e.ad = draft
	if e.state == StateAdComposition {
		e.setStateLocked(StateMediaUpload)
	}
	return e.snapshotLocked(), nil
}

// AttachMedia uploads one file through the gateway and records it in the
// ledger. Files are uploaded one at a time; a failure affects only the
// file it happened on.
func (e *Engine) AttachMedia(ctx context.Context, fileName, contentType string, file io.Reader) (campaign.MediaAsset, error) {
	e.mu.Lock()
	if err := e.guardLocked(StateMediaUpload); err != nil {
		e.mu.Unlock()
		return campaign.MediaAsset{}, err
	}
	if !AllowedMediaType(contentType) {
		metrics.MediaUploadsTotal.WithLabelValues(string(e.ad.Platform), "rejected").Inc()
		e.mu.Unlock()
		return campaign.MediaAsset{}, ErrUnsupportedMediaType
	}
	platform := e.ad.Platform
	campaignID := e.campaignID
	e.inFlight = true
	e.mu.Unlock()

	asset, err := e.gw.UploadMedia(ctx, platform, campaignID, fileName, contentType, file)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if e.abandoned {
		e.log.Infow("late_media_dropped", "asset_id", asset.AssetID, "file", fileName)
		return campaign.MediaAsset{}, ErrInvalidTransition
	}
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(string(platform), "error").Inc()
		e.log.Errorw("media_upload_error", "file", fileName, "campaign_id", campaignID, "error", err)
		return campaign.MediaAsset{}, err
	}
	e.ledger.Add(asset)
	metrics.MediaUploadsTotal.WithLabelValues(string(platform), "ok").Inc()
	e.log.Infow("media_attached", "asset_id", asset.AssetID, "file", fileName)
	return asset, nil
}

func (e *Engine) RemoveMedia(assetID string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guardLocked(StateMediaUpload); err != nil {
		return e.snapshotLocked(), err
	}
	e.ledger.Remove(assetID)
	return e.snapshotLocked(), nil
}

// FinalizeAd binds the ledger's assets into the draft, runs the full
// schema validation (media included) and creates the ad on the gateway.
func (e *Engine) FinalizeAd(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	if err := e.guardLocked(StateMediaUpload); err != nil {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	draft := *e.ad
	draft.MediaIDs = e.ledger.MediaIDs()
	draft.MediaURLs = e.ledger.MediaURLs()

	schema, err := adschema.Get(draft.Platform)
	if err != nil {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}
	if res := adschema.Validate(schema, draft); !res.Valid() {
		metrics.WorkflowValidationFailures.WithLabelValues(string(e.state)).Inc()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, &ValidationError{Fields: res.Errors}
	}

	e.inFlight = true
	e.mu.Unlock()

	adID, err := e.gw.CreateAd(ctx, draft)

	e.mu.Lock()
	e.inFlight = false
	if e.abandoned {
		e.log.Infow("late_ad_dropped", "campaign_id", draft.CampaignID)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, ErrInvalidTransition
	}
	if err != nil {
		e.log.Errorw("create_ad_error", "campaign_id", draft.CampaignID, "error", err)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	*e.ad = draft
	e.adIDs = append(e.adIDs, adID)
	e.setStateLocked(StateAdCreated)
	e.setStateLocked(StatePublishDecision)
	e.log.Infow("ad_created", "ad_id", adID, "campaign_id", draft.CampaignID)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	return snap, nil
}

// SkipToPublish is the explicit shortcut past ad composition: the
// campaign proceeds to the publish decision with zero ads attached. The
// campaign itself was already validated and created.
func (e *Engine) SkipToPublish() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guardLocked(StateAdComposition, StateMediaUpload); err != nil {
		return e.snapshotLocked(), err
	}
	e.ad = nil
	e.ledger.Clear()
	e.setStateLocked(StatePublishDecision)
	return e.snapshotLocked(), nil
}

// DecidePublish resolves the final branch. Confirming publishes through
// the gateway, which starts the campaign's ads in a paused state on the
// external platform; declining keeps every created record and ends the
// workflow as a saved draft.
func (e *Engine) DecidePublish(ctx context.Context, confirm bool) (Snapshot, error) {
	e.mu.Lock()
	if err := e.guardLocked(StatePublishDecision); err != nil {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	if !confirm {
		e.ledger.Clear()
		e.setStateLocked(StateDraftSaved)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}

	campaignID := e.campaignID
	e.inFlight = true
	e.mu.Unlock()

	outcome, err := e.gw.Publish(ctx, campaignID)

	e.mu.Lock()
	e.inFlight = false
	if e.abandoned {
		e.log.Infow("late_publish_dropped", "campaign_id", campaignID)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, ErrInvalidTransition
	}
	if err != nil {
		e.log.Errorw("publish_error", "campaign_id", campaignID, "error", err)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	e.externalCampaignID = outcome.ExternalCampaignID
	e.publishMessage = outcome.Message
	e.ledger.Clear()
	e.setStateLocked(StatePublished)
	e.log.Infow("campaign_published",
		"campaign_id", campaignID, "external_campaign_id", outcome.ExternalCampaignID)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	return snap, nil
}

// Abandon discards all local workflow state. Records already confirmed by
// the gateway are unaffected; an in-flight remote call is not cancelled,
// its late response is simply dropped.
func (e *Engine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandoned = true
	e.draft = nil
	e.ad = nil
	e.guidance = nil
	e.ledger.Clear()
}

func (e *Engine) guardLocked(allowed ...State) error {
	e.lastActive = time.Now()
	if e.abandoned {
		return ErrInvalidTransition
	}
	if e.inFlight {
		return ErrTransitionInFlight
	}
	for _, s := range allowed {
		if e.state == s {
			return nil
		}
	}
	return ErrInvalidTransition
}

func (e *Engine) setStateLocked(to State) {
	if e.state == to {
		return
	}
	metrics.WorkflowTransitionsTotal.WithLabelValues(string(e.state), string(to)).Inc()
	e.state = to
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:              e.state,
		CampaignID:         e.campaignID,
		ExternalCampaignID: e.externalCampaignID,
		PublishMessage:     e.publishMessage,
	}
	if e.draft != nil {
		d := *e.draft
		snap.Campaign = &d
	}
	if e.ad != nil {
		a := *e.ad
		snap.Ad = &a
	}
	if e.guidance != nil {
		g := *e.guidance
		snap.Guidance = &g
	}
	if len(e.adIDs) > 0 {
		snap.AdIDs = append([]string(nil), e.adIDs...)
	}
	if e.ledger.Len() > 0 {
		snap.Media = e.ledger.List()
	}
	return snap
}
