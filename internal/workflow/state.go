package workflow

// State is one step of the campaign creation workflow. The progression is
// linear with one branch point (guidance) and one shortcut (skip to
// publish); Published and DraftSaved are terminal.
type State string

const (
	StatePlatformSelect  State = "platform_select"
	StateObjectiveSelect State = "objective_select"
	StateGuidanceReview  State = "guidance_review"
	StateCampaignDetails State = "campaign_details"
	StateCampaignCreated State = "campaign_created"
	StateAdComposition   State = "ad_composition"
	StateMediaUpload     State = "media_upload"
	StateAdCreated       State = "ad_created"
	StatePublishDecision State = "publish_decision"
	StatePublished       State = "published"
	StateDraftSaved      State = "draft_saved"
)

func (s State) Terminal() bool {
	return s == StatePublished || s == StateDraftSaved
}
