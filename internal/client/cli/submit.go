package cli

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/medialift/medialift/internal/client/api"
	"github.com/medialift/medialift/internal/client/filters"
)

// Submit registers a processing job: submit <content_id> <type> <f1,f2,...>.
// The selection is run through the filter reducer so the tier cap and the
// mutual-exclusion rules apply exactly as they do in the form UI.
func (a *App) Submit(ctx context.Context, args []string) {
	if len(args) != 3 {
		printlnFn("Usage: submit <content_id> <video|audio|image> <filter1,filter2,...>")
		return
	}

	contentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Invalid content id:", args[0])
		return
	}
	contentType := args[1]
	if filters.Catalog(contentType) == nil {
		printlnFn("Unknown content type:", contentType)
		return
	}

	sel := filters.Selection{}
	for _, name := range strings.Split(args[2], ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t := filters.Toggle{Active: true}
		if name == "super_resolution" {
			t.Model = filters.SuperResolutionModels[0]
		}
		if name == "slow_motion" {
			t.Factor = filters.SlowMotionFactors[0]
		}
		sel[name] = t
	}

	info, err := a.api.GetUserTier(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	tier := filters.TierConfig{Tier: info.Tier, MaxFilters: info.MaxFilters}

	derived := filters.Derive(contentType, sel, tier)
	if derived.Message != "" {
		printlnFn(derived.Message)
	}
	if !derived.CanSubmit {
		printlnFn("Selection not submittable: pick between 1 and", tier.MaxFilters, "filters")
		return
	}

	req := api.RegisterJobRequest{
		JobType:    contentType,
		ConfigJSON: api.JobConfig{JobData: filters.BuildJobData(contentID, contentType, derived)},
	}
	if err := a.api.RegisterJob(ctx, req); err != nil {
		log.Printf("error: %v", err)
		return
	}
	printlnFn("Job registered successfully")
}
