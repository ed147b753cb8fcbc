// Package cli implements the interactive medialift client: login, uploads
// with live progress, job listing and live job watching, and filter-job
// submission.
package cli

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/medialift/medialift/internal/client/api"
	"github.com/medialift/medialift/internal/client/config"
	"github.com/medialift/medialift/internal/client/jobs"
	"github.com/medialift/medialift/internal/client/upload"
	"github.com/medialift/medialift/internal/logging"
)

type App struct {
	config      *config.Config
	api         *api.Client
	coordinator *upload.Coordinator
	log         logging.Logger
	reader      *bufio.Reader
	userName    string

	socketMu     sync.Mutex
	socket       *jobs.SocketClient
	socketCancel context.CancelFunc

	// pagination is the explicit paging state for the content listing,
	// reset to page 1 whenever an upload completes.
	pagination api.Pagination

	// lastProgress is the last percentage drawn on the upload progress
	// line; -1 means nothing is drawn.
	lastProgress int
}

func NewApp(c *config.Config, log logging.Logger) *App {
	httpClient := &http.Client{Timeout: c.RequestTimeout}
	apiClient := api.NewClient(c.ServerBaseURL, httpClient)

	// The transfer client carries no timeout: a large PUT may legitimately
	// run for a long time, and the user cancels stalled transfers.
	transfer := &http.Client{}

	return &App{
		config:       c,
		api:          apiClient,
		coordinator:  upload.NewCoordinator(apiClient, transfer),
		log:          log,
		reader:       bufio.NewReader(os.Stdin),
		pagination:   api.Pagination{Page: 1, PageSize: 10},
		lastProgress: -1,
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

// jobSocket lazily starts the process-wide socket client; all watched job
// cards share the one connection.
func (a *App) jobSocket(ctx context.Context) *jobs.SocketClient {
	a.socketMu.Lock()
	defer a.socketMu.Unlock()

	if a.socket == nil {
		a.socket = jobs.NewSocketClient(
			a.config.SocketURL, a.api.Token, a.log,
			a.config.ReconnectMinDelay, a.config.ReconnectMaxDelay,
		)
		runCtx, cancel := context.WithCancel(ctx)
		a.socketCancel = cancel
		go a.socket.Run(runCtx)
	}
	return a.socket
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		a.socketMu.Lock()
		if a.socketCancel != nil {
			a.socketCancel()
		}
		a.socketMu.Unlock()
	}()
	a.Root(ctx)
}
