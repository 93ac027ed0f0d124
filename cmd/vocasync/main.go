// Package main provides a small diagnostic entry point for the vocasync
// core library. The real consumer is a UI layer; this binary just opens
// the local store and reports its state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yuchiaw/vocasync/internal/review"
	"github.com/yuchiaw/vocasync/internal/store"
)

// Version is set at build time
var Version = "0.1.0"

func main() {
	dataDir := flag.String("data-dir", ".vocasync", "directory holding the local database")
	user := flag.String("user", "", "active user identifier")
	flag.Parse()

	fmt.Printf("vocasync core v%s\n", Version)

	s := store.New(*dataDir, store.DefaultConfig())
	if *user != "" {
		s.SetActiveUser(*user)
	}

	state := s.GetState()
	fmt.Printf("durable storage: %v\n", s.Durable())
	fmt.Printf("cached words:    %d\n", len(state.Words))
	fmt.Printf("pending actions: %d\n", len(state.PendingActions))
	fmt.Printf("due for review:  %d\n", review.CountDueWords(state.Words, ""))

	os.Exit(0)
}
