package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) Content(ctx context.Context, args []string) {
	contentType := ""
	if len(args) > 0 {
		contentType = args[0]
	}

	items, p, err := a.api.GetContentList(ctx, contentType, a.pagination)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	a.pagination = p

	printlnFn(fmt.Sprintf("page %d (%d total):", p.Page, p.Total))
	for _, item := range items {
		printlnFn(fmt.Sprintf("  %4d  %-6s %-10s %s", item.ID, item.ContentType, item.Status, item.Title))
	}
}
