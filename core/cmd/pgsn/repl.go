package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	pgsn "github.com/yoriyuki/pgsn/core"
	"github.com/yoriyuki/pgsn/store"
)

const (
	promptMain = "pgsn> "
	promptCont = "....> "
)

const replHelp = `Enter a term as wire JSON (it may span several lines), or one of:
  :get NAME    evaluate a stored term
  :put NAME    store the last entered term
  :list        list stored terms
  :steps N     set the step budget
  :quit        leave`

type repl struct {
	steps int
	store *store.Store
	last  pgsn.Term
}

func cmdRepl(cfg config, args []string) error {
	if len(args) != 0 {
		return errors.New("repl: takes no arguments")
	}

	r := &repl{steps: cfg.steps}
	if s, err := store.Open(cfg.db); err != nil {
		log.Printf("term store unavailable: %v", err)
	} else {
		r.store = s
		defer s.Close()
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.history); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.history); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Println(replHelp)
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(src, ":") {
			if quit := r.command(src); quit {
				return nil
			}
			continue
		}

		t, err := pgsn.UnmarshalTerm([]byte(src), nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		r.last = t
		r.eval(t)
	}
}

// readInput keeps prompting while the JSON read so far is incomplete.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

func incomplete(src string) bool {
	var v any
	err := json.Unmarshal([]byte(src), &v)
	return err != nil && strings.Contains(err.Error(), "unexpected end of JSON input")
}

func (r *repl) eval(t pgsn.Term) {
	n, err := pgsn.TryFullyEval(t, r.steps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println(n)
	if v, err := pgsn.ToHost(n); err == nil {
		if out, err := json.Marshal(v); err == nil {
			fmt.Println(string(out))
		}
	}
}

func (r *repl) command(src string) (quit bool) {
	fields := strings.Fields(src)
	ctx := context.Background()
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Println(replHelp)
	case ":steps":
		if len(fields) != 2 {
			fmt.Printf("steps: %d\n", r.steps)
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "error: invalid step budget %q\n", fields[1])
			return false
		}
		r.steps = n
	case ":get", ":put", ":list":
		if r.store == nil {
			fmt.Fprintln(os.Stderr, "error: no term store")
			return false
		}
		r.storeCommand(ctx, fields)
	default:
		fmt.Printf("unknown command. Type :help for help.\n")
	}
	return false
}

func (r *repl) storeCommand(ctx context.Context, fields []string) {
	switch {
	case fields[0] == ":list":
		entries, err := r.store.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		for _, e := range entries {
			fmt.Println(e.Name)
		}
	case len(fields) != 2:
		fmt.Fprintf(os.Stderr, "error: %s expects a name\n", fields[0])
	case fields[0] == ":get":
		t, err := r.store.Get(ctx, fields[1], nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		r.last = t
		r.eval(t)
	case fields[0] == ":put":
		if r.last == nil {
			fmt.Fprintln(os.Stderr, "error: nothing to store yet")
			return
		}
		if err := r.store.Put(ctx, fields[1], r.last); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
