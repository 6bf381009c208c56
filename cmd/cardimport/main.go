// Package main imports the card authoring file into a catalog with stable
// IDs, either a SQLite database or a normalized JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ramonehamilton/deckkeeper/internal/cardimport"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
)

var (
	source = flag.String("source", "", "Authoring JSON file (required)")
	dbPath = flag.String("db", "", "SQLite database to write the cards table to")
	output = flag.String("out", "", "Normalized catalog JSON file to write")
	watch  = flag.Bool("watch", false, "Keep running and re-import when the source changes")
)

func main() {
	flag.Parse()

	if *source == "" || (*dbPath == "") == (*output == "") {
		fmt.Fprintln(os.Stderr, "usage: cardimport -source cards.json (-db deckkeeper.db | -out catalog.json) [-watch]")
		os.Exit(2)
	}

	var sink cardimport.Sink
	if *dbPath != "" {
		db, err := storage.Open(storage.DefaultConfig(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
		sink = cardimport.NewSQLSink(db)
	} else {
		sink = cardimport.NewJSONSink(*output)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*watch {
		result, err := cardimport.Run(ctx, *source, sink)
		if err != nil {
			log.Printf("Import failed: %v", err)
			stop()
			os.Exit(1)
		}
		fmt.Printf("Imported %d cards (%d new, %d kept, %d skipped)\n", result.Total, result.New, result.Kept, result.Skipped)
		return
	}

	fmt.Printf("Watching %s, press Ctrl+C to stop\n", *source)
	err := cardimport.Watch(ctx, *source, sink, cardimport.DefaultDebounce, func(r *cardimport.Result, err error) {
		if err == nil {
			fmt.Printf("Imported %d cards (%d new, %d kept, %d skipped)\n", r.Total, r.New, r.Kept, r.Skipped)
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Watch failed: %v", err)
	}
}
