// Package filters computes the derived state of a filter-selection form:
// active count, submit gating against the tier cap, per-toggle disabling and
// mutual exclusion. It is a single pure reducer over the full toggle set,
// replacing the effect-chain logic that produced transient inconsistent
// states in the previous frontend.
package filters

import (
	"fmt"
	"strings"

	"github.com/medialift/medialift/internal/client/api"
)

// Toggle is the user's setting for one filter.
type Toggle struct {
	Active bool
	Model  string
	Factor string
}

// Selection maps filter name to its toggle state.
type Selection map[string]Toggle

// TierConfig bounds the selection for the user's service plan.
type TierConfig struct {
	Tier       string
	MaxFilters int
}

// Derived is the full display state computed from a selection. Disabled
// toggles must be rendered inactive and non-interactive; submission is only
// offered when CanSubmit is true.
type Derived struct {
	Selection   Selection
	Active      []string
	ActiveCount int
	CanSubmit   bool
	Message     string
	Disabled    map[string]bool
}

// catalogs per content kind, in display order.
var catalogs = map[string][]string{
	"video": {
		"super_resolution", "video_deblurring", "video_denoising",
		"face_restoration", "bw_to_color", "slow_motion",
		"video_interpolation", "video_deinterlacing",
		"speech_enhancement", "transcription",
	},
	"audio": {
		"stem_separation", "audio_denoising",
		"speech_enhancement", "transcription",
	},
	"image": {
		"super_resolution", "image_deblurring", "image_denoising",
		"face_restoration", "bw_to_color",
	},
}

// exclusions lists mutually exclusive pairs per content kind. The owner
// (map key) wins when both sides are active in the input: its peers are
// forced off and disabled. Owners are evaluated in catalog order, so
// slow_motion takes precedence over the voice filters, matching the
// original form behavior.
var exclusions = map[string]map[string][]string{
	"video": {
		"slow_motion":        {"speech_enhancement", "transcription"},
		"speech_enhancement": {"slow_motion"},
		"transcription":      {"slow_motion"},
	},
}

// Catalog returns the filter names available for a content kind.
func Catalog(contentType string) []string {
	return catalogs[contentType]
}

// SuperResolutionModels are the model choices for the super_resolution
// filter, in menu order.
var SuperResolutionModels = []string{
	"SuperRes 2x v1 (Faster)",
	"SuperRes 4x v1 (Faster)",
	"SuperRes 2x v2 (Slower, better result)",
	"SuperRes 4x v2 (Slower, better result)",
	"SuperRes Anime (For Animated content)",
}

// SlowMotionFactors are the factor choices for the slow_motion filter.
var SlowMotionFactors = []string{"2x", "4x"}

// Derive computes the full derived state for one selection. The input
// selection is not mutated; the normalized copy (exclusions applied) is
// returned in Derived.Selection.
func Derive(contentType string, sel Selection, tier TierConfig) Derived {
	catalog := catalogs[contentType]
	excl := exclusions[contentType]

	normalized := make(Selection, len(catalog))
	for _, name := range catalog {
		normalized[name] = sel[name]
	}

	disabled := make(map[string]bool, len(catalog))

	// Mutual exclusion first: an active owner forces its peers off and
	// disabled. Catalog order makes the resolution deterministic.
	for _, name := range catalog {
		peers, ok := excl[name]
		if !ok || !normalized[name].Active {
			continue
		}
		for _, peer := range peers {
			if t := normalized[peer]; t.Active {
				t.Active = false
				normalized[peer] = t
			}
			disabled[peer] = true
		}
	}

	var active []string
	for _, name := range catalog {
		if normalized[name].Active {
			active = append(active, name)
		}
	}
	count := len(active)

	// At the cap, every inactive toggle is disabled; activation is rejected
	// by the form, never by submitting an invalid count.
	if count >= tier.MaxFilters {
		for _, name := range catalog {
			if !normalized[name].Active {
				disabled[name] = true
			}
		}
	}

	d := Derived{
		Selection:   normalized,
		Active:      active,
		ActiveCount: count,
		CanSubmit:   count > 0 && count <= tier.MaxFilters,
		Disabled:    disabled,
	}
	if count == tier.MaxFilters && count > 0 {
		d.Message = fmt.Sprintf("Max %d filters allowed for %s tier", tier.MaxFilters, capitalizeFirst(tier.Tier))
	}
	return d
}

// BuildJobData assembles the registration payload for a derived selection.
// Model and factor values are only attached to their owning filters.
func BuildJobData(contentID int64, contentType string, d Derived) api.JobData {
	out := make(map[string]api.FilterValue, len(d.Selection))
	for _, name := range catalogs[contentType] {
		t := d.Selection[name]
		fv := api.FilterValue{Active: t.Active}
		if name == "super_resolution" {
			fv.Model = t.Model
		}
		if name == "slow_motion" {
			fv.Factor = t.Factor
		}
		out[name] = fv
	}
	return api.JobData{
		ContentID:   contentID,
		ContentType: contentType,
		Filters:     out,
	}
}

func capitalizeFirst(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
