package cli

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/medialift/medialift/internal/client/upload"
)

func (a *App) Upload(ctx context.Context, args []string) {
	if len(args) != 1 {
		printlnFn("Usage: upload <path>")
		return
	}
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	mimeType := typeForFile(path)

	kind := upload.DeriveProcessType(mimeType)
	policy := a.config.Uploads[kind]

	file := upload.FileInfo{
		Path:     path,
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Size:     info.Size(),
	}

	session, err := a.coordinator.Start(ctx, file,
		upload.Policy{MaxFileSize: policy.MaxFileSize, AcceptedTypes: policy.AcceptedTypes},
		upload.WithObserver(a.renderEvent),
	)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	// Ctrl-C during the transfer cancels the upload, not the CLI.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			session.Cancel()
		case <-session.Done():
			if a.coordinator.ConsumeRefresh() {
				// A finished upload supersedes the visible list: re-fetch
				// from the first page.
				a.pagination.Page = 1
				a.Content(ctx, nil)
			}
			return
		}
	}
}

// mediaTypes covers common media extensions missing from the system mime
// database on minimal installs.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
}

func typeForFile(path string) string {
	ext := filepath.Ext(path)
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	return "application/octet-stream"
}

func (a *App) renderEvent(ev upload.Event) {
	switch ev.State {
	case upload.StateUploading:
		if ev.Progress != a.lastProgress {
			a.lastProgress = ev.Progress
			fmt.Printf("\ruploading... %3d%%", ev.Progress)
			if ev.Progress == 100 {
				fmt.Println()
			}
		}
	default:
		a.lastProgress = -1
		printlnFn(ev.Message)
	}
}
