// lxdictstat reports summary statistics for a system dictionary and
// connection matrix, the inspection counterpart to the teacher's debug
// prints of kanji.Count() and kanji.GetKanjiReadings at startup.
package main

import (
	"flag"
	"fmt"
	"os"

	"lexime/connection"
	"lexime/dict"
)

func main() {
	dictPath := flag.String("dict", "", "path to a system.lxdx file")
	connPath := flag.String("connection", "", "path to a connection.lxcx file")
	lookup := flag.String("lookup", "", "print every entry stored at this reading")
	flag.Parse()

	if *dictPath == "" {
		fmt.Fprintln(os.Stderr, "usage: lxdictstat -dict <system.lxdx> [-connection <connection.lxcx>] [-lookup <reading>]")
		os.Exit(2)
	}

	d, err := dict.Load(*dictPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lxdictstat: failed to load %s: %v\n", *dictPath, err)
		os.Exit(1)
	}
	fmt.Printf("dictionary: %d readings, %s\n", d.Len(), *dictPath)

	if *lookup != "" {
		entries, ok := d.Lookup(*lookup)
		if !ok {
			fmt.Printf("no entries for reading %q\n", *lookup)
		}
		for _, e := range entries {
			fmt.Printf("  %s\t%s\tleft=%d right=%d cost=%d role=%s\n",
				e.Reading, e.Surface, e.LeftID, e.RightID, e.WordCost, e.Role)
		}
	}

	if *connPath == "" {
		return
	}
	m, err := connection.Load(*connPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lxdictstat: failed to load %s: %v\n", *connPath, err)
		os.Exit(1)
	}
	if m.IsFallback() {
		fmt.Println("connection matrix: using unigram fallback (no file loaded)")
	} else {
		fmt.Printf("connection matrix: %s\n", *connPath)
	}
}
