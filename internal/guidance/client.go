// Package guidance is the thin client for the objective guidance service.
// Guidance is advisory: every failure here maps to ErrUnavailable and the
// workflow proceeds without recommendations.
package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/pkg/metrics"
)

var ErrUnavailable = errors.New("guidance unavailable")

type Request struct {
	Platform       campaign.Platform       `json:"platform"`
	Objective      string                  `json:"objective"`
	Budget         float64                 `json:"budget"`
	TargetAudience campaign.TargetAudience `json:"target_audience"`
	Industry       string                  `json:"industry,omitempty"`
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Request(ctx context.Context, req Request) (campaign.GuidancePacket, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return campaign.GuidancePacket{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/guidance/objective", bytes.NewReader(body))
	if err != nil {
		return campaign.GuidancePacket{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.GuidanceRequestsTotal.WithLabelValues("error").Inc()
		return campaign.GuidancePacket{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GuidanceRequestsTotal.WithLabelValues("error").Inc()
		return campaign.GuidancePacket{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var packet campaign.GuidancePacket
	if err := json.NewDecoder(resp.Body).Decode(&packet); err != nil {
		metrics.GuidanceRequestsTotal.WithLabelValues("error").Inc()
		return campaign.GuidancePacket{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// The packet is keyed by what was asked, not by what the service
	// echoes back; a stale or mismatched echo must not poison the draft.
	packet.Platform = req.Platform
	packet.Objective = req.Objective
	packet.Budget = req.Budget

	metrics.GuidanceRequestsTotal.WithLabelValues("ok").Inc()
	return packet, nil
}
