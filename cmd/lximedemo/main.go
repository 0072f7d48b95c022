// lximedemo drives one session from a scripted list of keystrokes and
// prints the resulting events, the way the teacher's main.go drives one
// sentence through the tokenizer pipeline and dumps the JSON it produced.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"lexime/engine"
	"lexime/lexlog"
	"lexime/session"
)

func main() {
	dataDir := flag.String("data", "", "directory holding system.lxdx, connection.lxcx, settings.toml, romaji.toml")
	text := flag.String("text", "konnnichiha", "romaji text to type, one rune at a time")
	flag.Parse()

	lexlog.Init(log.InfoLevel)

	if *dataDir == "" {
		fmt.Fprintln(os.Stderr, "usage: lximedemo -data <dir> [-text <romaji>]")
		os.Exit(2)
	}

	now := func() uint64 { return uint64(time.Now().Unix()) }
	eng, err := engine.Open(engine.DefaultPaths(*dataDir), now)
	if err != nil {
		lexlog.Errorf("lximedemo: failed to open engine: %v", err)
		os.Exit(1)
	}
	defer eng.Close()

	sess := eng.CreateSession("")

	for _, r := range *text {
		resp := sess.HandleKey(session.KeyEvent{Text: string(r)})
		printResponse(resp)
		pollUntilQuiet(sess)
	}

	resp := sess.HandleKey(session.KeyEvent{KeyCode: session.KeyReturn})
	printResponse(resp)

	if err := eng.SaveHistory(); err != nil {
		lexlog.Warnf("lximedemo: failed to save history: %v", err)
	}
}

// pollUntilQuiet drains the worker's result for the keystroke just fed, if
// SchedulePoll was requested. A real host would poll on its own timer;
// here we poll up to five times, 2ms apart, and stop at the first poll
// that returns events.
func pollUntilQuiet(sess *session.Session) {
	for i := 0; i < 5; i++ {
		resp := sess.Poll()
		if len(resp.Events) > 0 {
			printResponse(resp)
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func printResponse(resp session.KeyResponse) {
	for _, ev := range resp.Events {
		switch ev.Kind {
		case session.EventSetMarkedText:
			fmt.Printf("marked text: %s\n", ev.Text)
		case session.EventShowCandidates:
			fmt.Printf("candidates: %v (selected %d)\n", ev.Surfaces, ev.Selected)
		case session.EventHideCandidates:
			fmt.Println("candidates hidden")
		case session.EventCommit:
			fmt.Printf("commit: %s\n", ev.Text)
		case session.EventSwitchToAbc:
			fmt.Println("switch to abc passthrough")
		case session.EventSchedulePoll:
			// no-op: main calls pollUntilQuiet after every keystroke anyway
		}
	}
}
