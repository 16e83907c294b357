// Command soxcorpus degrades speech corpora to phone-line quality.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thadeu/soxcorpus/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("soxcorpus: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:])
	stop()

	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
