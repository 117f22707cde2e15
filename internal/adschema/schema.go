// Package adschema holds the per-platform ad constraint tables and the
// validation engine that checks drafts against them. Schemas are data:
// supporting a new platform means adding a table entry, not code.
package adschema

import (
	"errors"

	"github.com/adpilot/adpilot/internal/campaign"
)

var ErrUnknownPlatform = errors.New("unknown ad platform")

type TextField struct {
	Name     string
	Required bool
	MinLen   int
	MaxLen   int
}

type RepeatField struct {
	Name       string
	MinCount   int
	MaxCount   int
	MaxItemLen int
}

type PlatformSchema struct {
	Platform      campaign.Platform
	Formats       []string
	CampaignTypes []string
	TextFields    []TextField
	RepeatFields  []RepeatField
	CallToActions []string
	MediaRequired bool
}

var schemas = map[campaign.Platform]PlatformSchema{
	campaign.PlatformMeta: {
		Platform: campaign.PlatformMeta,
		Formats:  []string{"image", "video", "carousel"},
		TextFields: []TextField{
			{Name: "ad_name", Required: true, MinLen: 1, MaxLen: 100},
			{Name: "primary_text", Required: true, MinLen: 1, MaxLen: 125},
			{Name: "headline", Required: true, MinLen: 1, MaxLen: 40},
			{Name: "description", MaxLen: 30},
			{Name: "destination_url", Required: true, MinLen: 1, MaxLen: 1024},
		},
		CallToActions: []string{
			"LEARN_MORE", "SHOP_NOW", "SIGN_UP", "SUBSCRIBE",
			"CONTACT_US", "DOWNLOAD", "GET_OFFER",
		},
		MediaRequired: true,
	},
	campaign.PlatformGoogle: {
		Platform:      campaign.PlatformGoogle,
		CampaignTypes: []string{"search", "display", "video", "performance_max"},
		TextFields: []TextField{
			{Name: "ad_name", Required: true, MinLen: 1, MaxLen: 100},
			{Name: "destination_url", Required: true, MinLen: 1, MaxLen: 1024},
		},
		RepeatFields: []RepeatField{
			{Name: "headlines", MinCount: 3, MaxCount: 15, MaxItemLen: 30},
			{Name: "descriptions", MinCount: 2, MaxCount: 4, MaxItemLen: 90},
			{Name: "keywords", MaxCount: 20, MaxItemLen: 80},
		},
		MediaRequired: false,
	},
	campaign.PlatformLinkedIn: {
		Platform: campaign.PlatformLinkedIn,
		Formats:  []string{"single_image", "video", "carousel"},
		TextFields: []TextField{
			{Name: "ad_name", Required: true, MinLen: 1, MaxLen: 255},
			{Name: "primary_text", Required: true, MinLen: 1, MaxLen: 600},
			{Name: "headline", Required: true, MinLen: 1, MaxLen: 200},
			{Name: "description", MaxLen: 300},
			{Name: "destination_url", Required: true, MinLen: 1, MaxLen: 1024},
		},
		CallToActions: []string{
			"LEARN_MORE", "APPLY_NOW", "DOWNLOAD", "REGISTER", "SIGN_UP",
		},
		MediaRequired: true,
	},
}

func Get(p campaign.Platform) (PlatformSchema, error) {
	s, ok := schemas[p]
	if !ok {
		return PlatformSchema{}, ErrUnknownPlatform
	}
	return s, nil
}

// Platforms lists the registered platforms, for request validation.
func Platforms() []campaign.Platform {
	return []campaign.Platform{
		campaign.PlatformMeta,
		campaign.PlatformGoogle,
		campaign.PlatformLinkedIn,
	}
}
