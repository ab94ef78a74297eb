package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pfrederiksen/ff-events/internal/calendar"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

var (
	dataDir = flag.String("data-dir", ".", "Directory holding the snapshot file")
	output  = flag.String("out", "ff-events.ics", "Path of the generated calendar file")
)

func main() {
	flag.Parse()

	store, err := storage.NewFileStore(*dataDir, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data dir: %v\n", err)
		os.Exit(1)
	}
	snap, err := store.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		os.Exit(1)
	}

	// Generate .ics file
	icsContent := calendar.GenerateFeed(snap.Events, calendar.DefaultCalendarName, snap.UpdatedAt)

	if err := os.WriteFile(*output, []byte(icsContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file with %d events: %s\n\n", snap.Len(), *output)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
}
