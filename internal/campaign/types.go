package campaign

import "time"

type Platform string

const (
	PlatformMeta     Platform = "meta"
	PlatformGoogle   Platform = "google"
	PlatformLinkedIn Platform = "linkedin"
)

func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformMeta, PlatformGoogle, PlatformLinkedIn:
		return Platform(s), true
	default:
		return "", false
	}
}

// GuidanceMinBudget is the minimum campaign budget, in currency units,
// for which objective guidance is requested.
const GuidanceMinBudget = 100.0

type TargetAudience struct {
	AgeMin    int      `json:"age_min"`
	AgeMax    int      `json:"age_max"`
	Genders   []string `json:"genders,omitempty"`
	Locations []string `json:"locations,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

type PlacementSettings struct {
	Automatic  bool     `json:"automatic"`
	Placements []string `json:"placements,omitempty"`
}

// CampaignDraft accumulates operator input until the gateway assigns a
// campaign id; after that it is treated as immutable.
type CampaignDraft struct {
	Platform          Platform          `json:"platform"`
	Objective         string            `json:"objective"`
	Budget            float64           `json:"budget"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           *time.Time        `json:"end_date,omitempty"`
	BiddingStrategy   string            `json:"bidding_strategy,omitempty"`
	TargetAudience    TargetAudience    `json:"target_audience"`
	PlacementSettings PlacementSettings `json:"placement_settings"`
}

type MetaAdData struct {
	Format string `json:"format"`
}

type GoogleAdData struct {
	CampaignType string   `json:"campaign_type"`
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	Keywords     []string `json:"keywords,omitempty"`
}

type LinkedInAdData struct {
	Format string `json:"format"`
}

// PlatformData is the per-platform variant of an ad draft; exactly one
// member matching the draft's platform is expected to be set.
type PlatformData struct {
	Meta     *MetaAdData     `json:"meta,omitempty"`
	Google   *GoogleAdData   `json:"google,omitempty"`
	LinkedIn *LinkedInAdData `json:"linkedin,omitempty"`
}

type AdDraft struct {
	CampaignID     string       `json:"campaign_id"`
	Platform       Platform     `json:"platform"`
	AdName         string       `json:"ad_name"`
	MediaIDs       []string     `json:"media_ids,omitempty"`
	MediaURLs      []string     `json:"media_urls,omitempty"`
	PrimaryText    string       `json:"primary_text"`
	Headline       string       `json:"headline"`
	Description    string       `json:"description,omitempty"`
	DestinationURL string       `json:"destination_url"`
	CallToAction   string       `json:"call_to_action,omitempty"`
	PlatformData   PlatformData `json:"platform_specific_data"`
}

type MediaAsset struct {
	AssetID     string   `json:"asset_id"`
	MediaID     string   `json:"media_id"`
	URL         string   `json:"url"`
	FileName    string   `json:"file_name"`
	ContentType string   `json:"content_type"`
	Platform    Platform `json:"platform"`
}

type BudgetAllocation struct {
	Daily    float64 `json:"daily"`
	Lifetime float64 `json:"lifetime"`
}

type ExpectedPerformance struct {
	Reach       int64   `json:"reach"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	Conversions int64   `json:"conversions"`
}

// GuidancePacket is valid only for the exact platform/objective/budget
// combination it was produced for.
type GuidancePacket struct {
	Platform            Platform            `json:"platform"`
	Objective           string              `json:"objective"`
	Budget              float64             `json:"budget"`
	RecommendedFormats  []string            `json:"recommended_formats"`
	BiddingStrategy     string              `json:"bidding_strategy"`
	BudgetAllocation    BudgetAllocation    `json:"budget_allocation"`
	ExpectedPerformance ExpectedPerformance `json:"expected_performance"`
	OptimizationTips    []string            `json:"optimization_tips"`
}

func (g GuidancePacket) Matches(platform Platform, objective string, budget float64) bool {
	return g.Platform == platform && g.Objective == objective && g.Budget == budget
}

// PublishEvent is the queue message emitted when a campaign is published.
type PublishEvent struct {
	CampaignID         string    `json:"campaign_id"`
	ExternalCampaignID string    `json:"external_campaign_id"`
	Platform           Platform  `json:"platform"`
	PublishedAt        time.Time `json:"published_at"`
}
