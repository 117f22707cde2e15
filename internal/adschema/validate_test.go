package adschema

import (
	"strings"
	"testing"
	"time"

	"github.com/adpilot/adpilot/internal/campaign"
)

func hasFieldError(res ValidationResult, field string, reason Reason) bool {
	for _, e := range res.Errors {
		if e.Field == field && e.Reason == reason {
			return true
		}
	}
	return false
}

func metaDraft() campaign.AdDraft {
	return campaign.AdDraft{
		CampaignID:     "c-1",
		Platform:       campaign.PlatformMeta,
		AdName:         "Spring promo",
		PrimaryText:    "Fresh gear for spring",
		Headline:       "Spring sale",
		DestinationURL: "https://example.com/spring",
		CallToAction:   "SHOP_NOW",
		MediaIDs:       []string{"m-1"},
		PlatformData:   campaign.PlatformData{Meta: &campaign.MetaAdData{Format: "image"}},
	}
}

func googleDraft(headlines, descriptions int) campaign.AdDraft {
	h := make([]string, headlines)
	for i := range h {
		h[i] = "Headline"
	}
	d := make([]string, descriptions)
	for i := range d {
		d[i] = "A description of the offer"
	}
	return campaign.AdDraft{
		CampaignID:     "c-2",
		Platform:       campaign.PlatformGoogle,
		AdName:         "Search campaign ad",
		DestinationURL: "https://example.com/landing",
		PlatformData: campaign.PlatformData{Google: &campaign.GoogleAdData{
			CampaignType: "search",
			Headlines:    h,
			Descriptions: d,
		}},
	}
}

func TestGetSchema_UnknownPlatform(t *testing.T) {
	if _, err := Get("tiktok"); err != ErrUnknownPlatform {
		t.Fatalf("want ErrUnknownPlatform, got %v", err)
	}
	for _, p := range Platforms() {
		if _, err := Get(p); err != nil {
			t.Fatalf("Get(%s): %v", p, err)
		}
	}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	for _, tc := range []struct {
		platform campaign.Platform
		mutate   func(*campaign.AdDraft)
		field    string
	}{
		{campaign.PlatformMeta, func(d *campaign.AdDraft) { d.PrimaryText = "" }, "primary_text"},
		{campaign.PlatformMeta, func(d *campaign.AdDraft) { d.Headline = "" }, "headline"},
		{campaign.PlatformMeta, func(d *campaign.AdDraft) { d.DestinationURL = "" }, "destination_url"},
		{campaign.PlatformLinkedIn, func(d *campaign.AdDraft) { d.AdName = "" }, "ad_name"},
		{campaign.PlatformGoogle, func(d *campaign.AdDraft) { d.DestinationURL = "" }, "destination_url"},
	} {
		var draft campaign.AdDraft
		switch tc.platform {
		case campaign.PlatformGoogle:
			draft = googleDraft(3, 2)
		case campaign.PlatformLinkedIn:
			draft = metaDraft()
			draft.Platform = campaign.PlatformLinkedIn
			draft.PlatformData = campaign.PlatformData{LinkedIn: &campaign.LinkedInAdData{Format: "single_image"}}
		default:
			draft = metaDraft()
		}
		tc.mutate(&draft)

		schema, err := Get(tc.platform)
		if err != nil {
			t.Fatal(err)
		}
		res := Validate(schema, draft)
		if res.Valid() {
			t.Fatalf("%s/%s: want invalid", tc.platform, tc.field)
		}
		if !hasFieldError(res, tc.field, ReasonMissing) {
			t.Fatalf("%s: want {%s, missing}, got %v", tc.platform, tc.field, res.Errors)
		}
	}
}

func TestValidate_GoogleHeadlineCardinality(t *testing.T) {
	schema, err := Get(campaign.PlatformGoogle)
	if err != nil {
		t.Fatal(err)
	}

	res := Validate(schema, googleDraft(2, 3))
	if res.Valid() {
		t.Fatal("2 headlines: want invalid")
	}
	if !hasFieldError(res, "headlines", ReasonTooFew) {
		t.Fatalf("want {headlines, too_few}, got %v", res.Errors)
	}

	res = Validate(schema, googleDraft(3, 2))
	if !res.Valid() {
		t.Fatalf("3 headlines / 2 descriptions: want valid, got %v", res.Errors)
	}

	res = Validate(schema, googleDraft(16, 2))
	if !hasFieldError(res, "headlines", ReasonTooMany) {
		t.Fatalf("16 headlines: want too_many, got %v", res.Errors)
	}

	res = Validate(schema, googleDraft(3, 5))
	if !hasFieldError(res, "descriptions", ReasonTooMany) {
		t.Fatalf("5 descriptions: want too_many, got %v", res.Errors)
	}
}

func TestValidate_CharacterCaps(t *testing.T) {
	schema, err := Get(campaign.PlatformMeta)
	if err != nil {
		t.Fatal(err)
	}

	draft := metaDraft()
	draft.PrimaryText = strings.Repeat("x", 126)
	res := Validate(schema, draft)
	if !hasFieldError(res, "primary_text", ReasonTooLong) {
		t.Fatalf("want {primary_text, too_long}, got %v", res.Errors)
	}

	google, err := Get(campaign.PlatformGoogle)
	if err != nil {
		t.Fatal(err)
	}
	gd := googleDraft(3, 2)
	gd.PlatformData.Google.Headlines[0] = strings.Repeat("y", 31)
	res = Validate(google, gd)
	if !hasFieldError(res, "headlines", ReasonTooLong) {
		t.Fatalf("want {headlines, too_long}, got %v", res.Errors)
	}
}

func TestValidate_MediaRequirement(t *testing.T) {
	meta, err := Get(campaign.PlatformMeta)
	if err != nil {
		t.Fatal(err)
	}
	draft := metaDraft()
	draft.MediaIDs = nil
	res := Validate(meta, draft)
	if !hasFieldError(res, "media", ReasonMissing) {
		t.Fatalf("meta without media: want {media, missing}, got %v", res.Errors)
	}

	// Google ads are acceptable with zero media.
	google, err := Get(campaign.PlatformGoogle)
	if err != nil {
		t.Fatal(err)
	}
	if res := Validate(google, googleDraft(3, 2)); !res.Valid() {
		t.Fatalf("google without media: want valid, got %v", res.Errors)
	}
}

func TestValidate_FormatAndCTA(t *testing.T) {
	schema, err := Get(campaign.PlatformMeta)
	if err != nil {
		t.Fatal(err)
	}

	draft := metaDraft()
	draft.PlatformData.Meta.Format = "billboard"
	if res := Validate(schema, draft); !hasFieldError(res, "format", ReasonInvalidFormat) {
		t.Fatalf("want {format, invalid_format}, got %v", res.Errors)
	}

	draft = metaDraft()
	draft.PlatformData.Meta = nil
	if res := Validate(schema, draft); !hasFieldError(res, "format", ReasonMissing) {
		t.Fatalf("want {format, missing}, got %v", res.Errors)
	}

	draft = metaDraft()
	draft.CallToAction = "BUY_OR_ELSE"
	if res := Validate(schema, draft); !hasFieldError(res, "call_to_action", ReasonInvalidFormat) {
		t.Fatalf("want {call_to_action, invalid_format}, got %v", res.Errors)
	}

	draft = metaDraft()
	draft.DestinationURL = "not a url"
	if res := Validate(schema, draft); !hasFieldError(res, "destination_url", ReasonInvalidFormat) {
		t.Fatalf("want {destination_url, invalid_format}, got %v", res.Errors)
	}
}

func TestValidateCampaign(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	draft := campaign.CampaignDraft{
		Platform:  campaign.PlatformMeta,
		Objective: "conversions",
		Budget:    500,
		StartDate: start,
		EndDate:   &end,
	}
	if res := ValidateCampaign(draft); !res.Valid() {
		t.Fatalf("want valid, got %v", res.Errors)
	}

	bad := draft
	bad.StartDate = time.Time{}
	if res := ValidateCampaign(bad); !hasFieldError(res, "start_date", ReasonMissing) {
		t.Fatalf("want {start_date, missing}, got %v", res.Errors)
	}

	bad = draft
	before := start.AddDate(0, 0, -1)
	bad.EndDate = &before
	if res := ValidateCampaign(bad); !hasFieldError(res, "end_date", ReasonInvalidFormat) {
		t.Fatalf("want {end_date, invalid_format}, got %v", res.Errors)
	}

	bad = draft
	bad.Budget = 0
	if res := ValidateCampaign(bad); !hasFieldError(res, "budget", ReasonInvalidFormat) {
		t.Fatalf("want {budget, invalid_format}, got %v", res.Errors)
	}
}
