package adschema

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/adpilot/adpilot/internal/campaign"
)

type Reason string

const (
	ReasonMissing       Reason = "missing"
	ReasonTooShort      Reason = "too_short"
	ReasonTooLong       Reason = "too_long"
	ReasonTooFew        Reason = "too_few"
	ReasonTooMany       Reason = "too_many"
	ReasonInvalidFormat Reason = "invalid_format"
)

type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
}

type ValidationResult struct {
	Errors []FieldError `json:"errors,omitempty"`
}

func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) add(field string, reason Reason) {
	r.Errors = append(r.Errors, FieldError{Field: field, Reason: reason})
}

// Validate checks an ad draft against a platform schema. It is pure and
// total: it never panics and always returns a result, collecting every
// field error rather than stopping at the first.
func Validate(schema PlatformSchema, draft campaign.AdDraft) ValidationResult {
	var res ValidationResult

	values := map[string]string{
		"ad_name":         draft.AdName,
		"primary_text":    draft.PrimaryText,
		"headline":        draft.Headline,
		"description":     draft.Description,
		"destination_url": draft.DestinationURL,
	}

	for _, f := range schema.TextFields {
		v := strings.TrimSpace(values[f.Name])
		if v == "" {
			if f.Required {
				res.add(f.Name, ReasonMissing)
			}
			continue
		}
		n := utf8.RuneCountInString(v)
		switch {
		case f.MinLen > 0 && n < f.MinLen:
			res.add(f.Name, ReasonTooShort)
		case f.MaxLen > 0 && n > f.MaxLen:
			res.add(f.Name, ReasonTooLong)
		}
	}

	if u := strings.TrimSpace(draft.DestinationURL); u != "" {
		if !isHTTPURL(u) {
			res.add("destination_url", ReasonInvalidFormat)
		}
	}

	if cta := strings.TrimSpace(draft.CallToAction); cta != "" && len(schema.CallToActions) > 0 {
		if !contains(schema.CallToActions, cta) {
			res.add("call_to_action", ReasonInvalidFormat)
		}
	}

	validatePlatformData(schema, draft, &res)

	if schema.MediaRequired && len(draft.MediaIDs) == 0 {
		res.add("media", ReasonMissing)
	}

	return res
}

func validatePlatformData(schema PlatformSchema, draft campaign.AdDraft, res *ValidationResult) {
	switch schema.Platform {
	case campaign.PlatformMeta:
		data := draft.PlatformData.Meta
		if data == nil {
			res.add("format", ReasonMissing)
			return
		}
		if !contains(schema.Formats, data.Format) {
			res.add("format", ReasonInvalidFormat)
		}
	case campaign.PlatformLinkedIn:
		data := draft.PlatformData.LinkedIn
		if data == nil {
			res.add("format", ReasonMissing)
			return
		}
		if !contains(schema.Formats, data.Format) {
			res.add("format", ReasonInvalidFormat)
		}
	case campaign.PlatformGoogle:
		data := draft.PlatformData.Google
		if data == nil {
			res.add("campaign_type", ReasonMissing)
			for _, f := range schema.RepeatFields {
				if f.MinCount > 0 {
					res.add(f.Name, ReasonTooFew)
				}
			}
			return
		}
		if !contains(schema.CampaignTypes, data.CampaignType) {
			if strings.TrimSpace(data.CampaignType) == "" {
				res.add("campaign_type", ReasonMissing)
			} else {
				res.add("campaign_type", ReasonInvalidFormat)
			}
		}
		repeats := map[string][]string{
			"headlines":    data.Headlines,
			"descriptions": data.Descriptions,
			"keywords":     data.Keywords,
		}
		for _, f := range schema.RepeatFields {
			items := nonBlank(repeats[f.Name])
			if len(items) < f.MinCount {
				res.add(f.Name, ReasonTooFew)
				continue
			}
			if f.MaxCount > 0 && len(items) > f.MaxCount {
				res.add(f.Name, ReasonTooMany)
				continue
			}
			for _, item := range items {
				if f.MaxItemLen > 0 && utf8.RuneCountInString(item) > f.MaxItemLen {
					res.add(f.Name, ReasonTooLong)
					break
				}
			}
		}
	}
}

// ValidateCampaign checks the pre-creation campaign draft. Platform and
// objective are fixed earlier in the workflow, so the checks here cover
// the remaining operator input.
func ValidateCampaign(draft campaign.CampaignDraft) ValidationResult {
	var res ValidationResult

	if _, ok := campaign.ParsePlatform(string(draft.Platform)); !ok {
		res.add("platform", ReasonInvalidFormat)
	}
	if strings.TrimSpace(draft.Objective) == "" {
		res.add("objective", ReasonMissing)
	}
	if draft.Budget <= 0 {
		res.add("budget", ReasonInvalidFormat)
	}
	if draft.StartDate.IsZero() {
		res.add("start_date", ReasonMissing)
	}
	if draft.EndDate != nil && !draft.StartDate.IsZero() && !draft.EndDate.After(draft.StartDate) {
		res.add("end_date", ReasonInvalidFormat)
	}
	if draft.TargetAudience.AgeMin != 0 && draft.TargetAudience.AgeMax != 0 &&
		draft.TargetAudience.AgeMax < draft.TargetAudience.AgeMin {
		res.add("target_audience", ReasonInvalidFormat)
	}
	return res
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, strings.TrimSpace(item))
		}
	}
	return out
}
