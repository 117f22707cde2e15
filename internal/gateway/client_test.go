package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adpilot/adpilot/internal/campaign"
)

func TestCreateCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/campaigns/create" {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}
		var draft campaign.CampaignDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Fatal(err)
		}
		if draft.Platform != campaign.PlatformMeta {
			t.Fatalf("platform = %s", draft.Platform)
		}
		json.NewEncoder(w).Encode(map[string]string{"campaign_id": "cmp-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	id, err := c.CreateCampaign(context.Background(), campaign.CampaignDraft{Platform: campaign.PlatformMeta})
	if err != nil {
		t.Fatal(err)
	}
	if id != "cmp-42" {
		t.Fatalf("id = %q", id)
	}
}

func TestCreateCampaign_EmptyIDIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CreateCampaign(context.Background(), campaign.CampaignDraft{})
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("want *Error, got %v", err)
	}
}

func TestErrorPayloadMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"meta rejected the campaign"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CreateCampaign(context.Background(), campaign.CampaignDraft{})
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("want *Error, got %v", err)
	}
	if gwErr.Status != http.StatusBadGateway || gwErr.Message != "meta rejected the campaign" {
		t.Fatalf("error = %+v", gwErr)
	}
}

func TestPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns/cmp-42/publish" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(PublishReceipt{
			Message:            "published, ads start paused",
			ExternalCampaignID: "ext-9",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	receipt, err := c.Publish(context.Background(), "cmp-42")
	if err != nil {
		t.Fatal(err)
	}
	if receipt.ExternalCampaignID != "ext-9" {
		t.Fatalf("receipt = %+v", receipt)
	}
}

func TestUploadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("platform"); got != "linkedin" {
			t.Fatalf("platform = %q", got)
		}
		if got := r.FormValue("campaign_id"); got != "cmp-42" {
			t.Fatalf("campaign_id = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if hdr.Filename != "hero.png" {
			t.Fatalf("filename = %q", hdr.Filename)
		}
		payload, _ := io.ReadAll(f)
		if string(payload) != "pngdata" {
			t.Fatalf("payload = %q", payload)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"asset_id": "asset-1",
			"media_id": "media-1",
			"url":      "https://cdn.example.com/hero.png",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	asset, err := c.UploadMedia(context.Background(), campaign.PlatformLinkedIn, "cmp-42", "hero.png", "image/png", strings.NewReader("pngdata"))
	if err != nil {
		t.Fatal(err)
	}
	if asset.AssetID != "asset-1" || asset.MediaID != "media-1" {
		t.Fatalf("asset = %+v", asset)
	}
	if asset.ContentType != "image/png" || asset.Platform != campaign.PlatformLinkedIn {
		t.Fatalf("asset = %+v", asset)
	}
}

func TestControl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action ControlAction `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Action != ControlPause {
			t.Fatalf("action = %s", body.Action)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "campaign paused"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	msg, err := c.Control(context.Background(), "cmp-42", ControlPause)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "campaign paused" {
		t.Fatalf("message = %q", msg)
	}
}
