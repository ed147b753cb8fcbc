package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

func (a *App) getStatus() string {
	if a.userName != "" {
		return fmt.Sprintf("(%s)", a.userName)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {

	printlnFn("Welcome to medialift CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("ml %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload <path>, content, jobs, watch <job_id>, canceljob <job_id>, submit <content_id> <type> <filters>, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			a.Login(ctx)
		case "upload":
			a.Upload(ctx, args)
		case "content":
			a.Content(ctx, args)
		case "jobs":
			a.Jobs(ctx, args)
		case "watch":
			a.Watch(ctx, args)
		case "canceljob":
			a.CancelJob(ctx, args)
		case "submit":
			a.Submit(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
