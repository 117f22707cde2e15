package server

import (
	"time"

	"github.com/adpilot/adpilot/internal/adschema"
	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/internal/workflow"
)

// Field-level requirements are deliberately not expressed as binding tags:
// the validation engine owns them and reports them as field errors the
// presentation layer can render next to inputs.

type PlatformObjectiveReq struct {
	Platform       string                  `json:"platform"`
	Objective      string                  `json:"objective"`
	Budget         float64                 `json:"budget"`
	TargetAudience campaign.TargetAudience `json:"target_audience"`
	Industry       string                  `json:"industry"`
}

type CampaignDetailsReq struct {
	StartDate         time.Time                  `json:"start_date"`
	EndDate           *time.Time                 `json:"end_date"`
	BiddingStrategy   string                     `json:"bidding_strategy"`
	PlacementSettings campaign.PlacementSettings `json:"placement_settings"`
}

type AdDraftReq struct {
	AdName         string                `json:"ad_name"`
	PrimaryText    string                `json:"primary_text"`
	Headline       string                `json:"headline"`
	Description    string                `json:"description"`
	DestinationURL string                `json:"destination_url"`
	CallToAction   string                `json:"call_to_action"`
	PlatformData   campaign.PlatformData `json:"platform_specific_data"`
}

type PublishDecisionReq struct {
	Confirm bool `json:"confirm"`
}

type ControlReq struct {
	Action string `json:"action"`
}

type ControlResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SessionResp struct {
	SessionID string            `json:"session_id"`
	State     workflow.Snapshot `json:"state"`
}

type StateResp struct {
	Status string            `json:"status"`
	State  workflow.Snapshot `json:"state"`
}

type MediaResp struct {
	Status string              `json:"status"`
	Asset  campaign.MediaAsset `json:"asset"`
	State  workflow.Snapshot   `json:"state"`
}

type ValidationErrResp struct {
	Status string                `json:"status"`
	Errors []adschema.FieldError `json:"errors"`
}

type ErrorResp struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type CampaignListItem struct {
	CampaignID         string     `json:"campaign_id"`
	Platform           string     `json:"platform"`
	Objective          string     `json:"objective"`
	Budget             float64    `json:"budget"`
	Status             string     `json:"status"`
	ExternalCampaignID string     `json:"external_campaign_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	Stats              struct {
		Ads        int `json:"ads"`
		MediaTotal int `json:"media_total"`
	} `json:"stats"`
}
