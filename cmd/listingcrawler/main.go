package main

import (
	"context"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"ListingCrawler/cmd/listingcrawler/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
