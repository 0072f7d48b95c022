// lxhistctl maintains a user-history checkpoint: "stats" reports its size,
// "compact" replays the WAL on top of the checkpoint and rewrites both,
// shrinking the sibling .wal file the way the teacher's logger.InitLogs
// clears stale .json files at the start of a run.
package main

import (
	"flag"
	"fmt"
	"os"

	"lexime/history"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lxhistctl <stats|compact> -checkpoint <history.lxud>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet("lxhistctl", flag.ExitOnError)
	checkpoint := fs.String("checkpoint", "", "path to a history.lxud checkpoint")
	fs.Parse(os.Args[2:])

	if *checkpoint == "" {
		usage()
		os.Exit(2)
	}

	switch cmd {
	case "stats":
		runStats(*checkpoint)
	case "compact":
		runCompact(*checkpoint)
	default:
		usage()
		os.Exit(2)
	}
}

func runStats(path string) {
	store, err := history.Open(path, history.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "lxhistctl: failed to open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer store.Close()

	info, err := os.Stat(path)
	size := int64(0)
	if err == nil {
		size = info.Size()
	}
	walInfo, err := os.Stat(path + ".wal")
	walSize := int64(0)
	if err == nil {
		walSize = walInfo.Size()
	}
	fmt.Printf("checkpoint: %s (%d bytes)\n", path, size)
	fmt.Printf("wal:        %s.wal (%d bytes)\n", path, walSize)
}

func runCompact(path string) {
	store, err := history.Open(path, history.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "lxhistctl: failed to open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Save(path); err != nil {
		fmt.Fprintf(os.Stderr, "lxhistctl: failed to save %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("compacted %s\n", path)
}
