// Command slide-voice edits speaker notes and embeds spoken narration in
// PowerPoint decks.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmdCtx := newCommandContext()
	err := newRootCommand(cmdCtx).ExecuteContext(ctx)

	cmdCtx.close()
	stop()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}

		os.Exit(1)
	}
}
