package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/medialift/medialift/internal/client/api"
	"github.com/medialift/medialift/internal/client/jobs"
)

func (a *App) Jobs(ctx context.Context, args []string) {
	jobType := ""
	if len(args) > 0 {
		jobType = args[0]
	}

	list, p, err := a.api.GetJobs(ctx, jobType, api.Pagination{Page: 1, PageSize: 20})
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	printlnFn(fmt.Sprintf("%d job(s):", p.Total))
	for _, j := range list {
		printlnFn(fmt.Sprintf("  %s  %-10s %-9s %3d%%  %s",
			j.JobID, j.JobType, j.Status, j.Progress, time.Unix(j.CreatedAt, 0).Format(time.DateTime)))
	}
}

// Watch subscribes to one job on the shared socket and renders its projected
// display state until the job reaches a terminal state.
func (a *App) Watch(ctx context.Context, args []string) {
	if len(args) != 1 {
		printlnFn("Usage: watch <job_id>")
		return
	}
	jobID := args[0]

	socket := a.jobSocket(ctx)
	ch, unsubscribe := socket.Subscribe(jobID)
	defer unsubscribe()

	projector := jobs.NewProjector(jobID)

	// Seed from a REST snapshot so a message missed before subscribing (or
	// across a reconnect) does not leave a stale display.
	if list, _, err := a.api.GetJobs(ctx, "", api.Pagination{Page: 1, PageSize: 100}); err == nil {
		for _, j := range list {
			if j.JobID == jobID {
				projector.Seed(jobs.SnapshotState(j.Status, j.Progress, j.Model))
				break
			}
		}
	}

	if s := projector.State(); s.Kind != jobs.DisplayUnknown {
		renderDisplay(s)
		if s.Terminal() {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			state := projector.Apply(msg)
			renderDisplay(state)
			if state.Terminal() {
				return
			}
		}
	}
}

func renderDisplay(s jobs.DisplayState) {
	if s.Indeterminate {
		printlnFn(s.Label + " ...")
		return
	}
	if s.Terminal() {
		printlnFn(fmt.Sprintf("[%s]", s.Label))
		return
	}
	printlnFn(fmt.Sprintf("%s  %3d%%", s.Label, s.Progress))
}

func (a *App) CancelJob(ctx context.Context, args []string) {
	if len(args) != 1 {
		printlnFn("Usage: canceljob <job_id>")
		return
	}
	if err := a.api.CancelJob(ctx, args[0]); err != nil {
		log.Printf("error: %v", err)
		return
	}
	printlnFn("Cancel requested")
}
