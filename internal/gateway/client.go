// Package gateway is the client for the ad platform gateway, the external
// layer that persists campaigns and ads and publishes them to the real
// ad networks.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/adpilot/adpilot/internal/campaign"
	"github.com/adpilot/adpilot/pkg/metrics"
)

// Error carries the gateway's human-readable failure message for the
// operator. Status is zero for transport-level failures.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("gateway: %s", e.Message)
	}
	return fmt.Sprintf("gateway: status %d: %s", e.Status, e.Message)
}

type PublishReceipt struct {
	Message            string `json:"message"`
	ExternalCampaignID string `json:"external_campaign_id"`
}

type ControlAction string

const (
	ControlPause  ControlAction = "pause"
	ControlResume ControlAction = "resume"
)

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

func (c *Client) CreateCampaign(ctx context.Context, draft campaign.CampaignDraft) (string, error) {
	var out struct {
		CampaignID string `json:"campaign_id"`
	}
	if err := c.postJSON(ctx, "create_campaign", "/campaigns/create", draft, &out); err != nil {
		return "", err
	}
	if out.CampaignID == "" {
		return "", &Error{Message: "gateway returned empty campaign_id"}
	}
	return out.CampaignID, nil
}

func (c *Client) CreateAd(ctx context.Context, draft campaign.AdDraft) (string, error) {
	var out struct {
		AdID string `json:"ad_id"`
	}
	if err := c.postJSON(ctx, "create_ad", "/ads/create-platform-specific", draft, &out); err != nil {
		return "", err
	}
	if out.AdID == "" {
		return "", &Error{Message: "gateway returned empty ad_id"}
	}
	return out.AdID, nil
}

func (c *Client) Publish(ctx context.Context, campaignID string) (PublishReceipt, error) {
	var out PublishReceipt
	path := fmt.Sprintf("/campaigns/%s/publish", campaignID)
	if err := c.postJSON(ctx, "publish", path, struct{}{}, &out); err != nil {
		return PublishReceipt{}, err
	}
	return out, nil
}

func (c *Client) Control(ctx context.Context, campaignID string, action ControlAction) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/campaigns/%s/control", campaignID)
	body := struct {
		Action ControlAction `json:"action"`
	}{Action: action}
	if err := c.postJSON(ctx, "control", path, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// UploadMedia sends a single file. Callers upload files one at a time so a
// failure is attributable to a specific file.
func (c *Client) UploadMedia(ctx context.Context, platform campaign.Platform, campaignID, fileName, contentType string, file io.Reader) (campaign.MediaAsset, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return campaign.MediaAsset{}, &Error{Message: err.Error()}
	}
	if _, err := io.Copy(fw, file); err != nil {
		return campaign.MediaAsset{}, &Error{Message: err.Error()}
	}
	_ = mw.WriteField("platform", string(platform))
	_ = mw.WriteField("campaign_id", campaignID)
	if err := mw.Close(); err != nil {
		return campaign.MediaAsset{}, &Error{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/media/upload", &buf)
	if err != nil {
		return campaign.MediaAsset{}, &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("upload_media", "error").Inc()
		return campaign.MediaAsset{}, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.GatewayRequestsTotal.WithLabelValues("upload_media", "error").Inc()
		return campaign.MediaAsset{}, readError(resp)
	}

	var out struct {
		AssetID string `json:"asset_id"`
		MediaID string `json:"media_id"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("upload_media", "error").Inc()
		return campaign.MediaAsset{}, &Error{Message: err.Error()}
	}

	metrics.GatewayRequestsTotal.WithLabelValues("upload_media", "ok").Inc()
	return campaign.MediaAsset{
		AssetID:     out.AssetID,
		MediaID:     out.MediaID,
		URL:         out.URL,
		FileName:    fileName,
		ContentType: contentType,
		Platform:    platform,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		return readError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		return &Error{Message: err.Error()}
	}

	metrics.GatewayRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func readError(resp *http.Response) *Error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			msg = payload.Error
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
