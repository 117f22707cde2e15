package server

import (
	"context"

	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/internal/gateway"
	"github.com/adpilot/adpilot/internal/guidance"
	"github.com/adpilot/adpilot/internal/workflow"
	"github.com/adpilot/adpilot/pkg/logx"
)

type gatewayAdapter struct{ *gateway.Client }

func (a *gatewayAdapter) Publish(ctx context.Context, campaignID string) (workflow.PublishOutcome, error) {
	receipt, err := a.Client.Publish(ctx, campaignID)
	if err != nil {
		return workflow.PublishOutcome{}, err
	}
	return workflow.PublishOutcome{
		Message:            receipt.Message,
		ExternalCampaignID: receipt.ExternalCampaignID,
	}, nil
}

type guidanceAdapter struct{ *guidance.Client }

func (a *guidanceAdapter) RequestGuidance(ctx context.Context, req workflow.GuidanceRequest) (campaign.GuidancePacket, error) {
	return a.Client.Request(ctx, guidance.Request{
		Platform:       req.Platform,
		Objective:      req.Objective,
		Budget:         req.Budget,
		TargetAudience: req.TargetAudience,
		Industry:       req.Industry,
	})
}

// NewEngineFactory wires the outbound clients into the engine constructor
// used by the session registry.
func NewEngineFactory(gw *gateway.Client, guide *guidance.Client) func() *workflow.Engine {
	g := &gatewayAdapter{gw}
	q := &guidanceAdapter{guide}
	log := logx.Named("workflow")
	return func() *workflow.Engine {
		return workflow.NewEngine(g, q, log)
	}
}
