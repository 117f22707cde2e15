package workflow

import "github.com/adpilot/adpilot/internal/campaign"

// Two image and two video subtypes are accepted; everything else is
// rejected per file.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"video/mp4":       true,
	"video/quicktime": true,
}

func AllowedMediaType(contentType string) bool {
	return allowedMediaTypes[contentType]
}

// MediaLedger tracks uploaded creative assets for the active draft in
// insertion order. It is owned by a single engine and guarded by the
// engine's lock; it does no locking of its own.
type MediaLedger struct {
	assets []campaign.MediaAsset
}

func (l *MediaLedger) Add(asset campaign.MediaAsset) string {
	l.assets = append(l.assets, asset)
	return asset.AssetID
}

// Remove deletes the asset with the given id. An unknown id is a no-op
// and leaves order and size untouched.
func (l *MediaLedger) Remove(assetID string) {
	for i, a := range l.assets {
		if a.AssetID == assetID {
			l.assets = append(l.assets[:i], l.assets[i+1:]...)
			return
		}
	}
}

func (l *MediaLedger) List() []campaign.MediaAsset {
	out := make([]campaign.MediaAsset, len(l.assets))
	copy(out, l.assets)
	return out
}

func (l *MediaLedger) Len() int { return len(l.assets) }

func (l *MediaLedger) Clear() { l.assets = nil }

// MediaIDs returns the gateway media ids in insertion order, as bound
// into the ad draft on submission.
func (l *MediaLedger) MediaIDs() []string {
	out := make([]string, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, a.MediaID)
	}
	return out
}

func (l *MediaLedger) MediaURLs() []string {
	out := make([]string, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, a.URL)
	}
	return out
}
