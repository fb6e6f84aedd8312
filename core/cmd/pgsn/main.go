package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	pgsn "github.com/yoriyuki/pgsn/core"
	"github.com/yoriyuki/pgsn/gsn"
	"github.com/yoriyuki/pgsn/store"
)

const usage = `usage: pgsn <command> [arguments]

Commands:
  eval [-steps N] [-workers N] [-trace] [-v] FILE...   evaluate wire JSON terms ("-" reads stdin)
  trace [-steps N] FILE                                print the reduction trace of a term
  doc [-steps N] FILE                                  evaluate a GSN argument and print its parts
  dot [-steps N] FILE                                  evaluate a GSN argument and print Graphviz DOT
  put NAME FILE                                        store a term under NAME
  get NAME                                             print the stored term as wire JSON
  list                                                 list stored terms
  delete NAME                                          remove a stored term
  repl                                                 interactive evaluation

Environment:
  PGSN_DB       term store database (default pgsn.db)
  PGSN_STEPS    reduction step budget (default 1000000)
  PGSN_HISTORY  repl history file (default $HOME/.pgsn_history)
`

type config struct {
	db      string
	steps   int
	history string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadConfig() config {
	cfg := config{db: envOr("PGSN_DB", "pgsn.db")}

	steps, err := strconv.Atoi(envOr("PGSN_STEPS", "1000000"))
	if err != nil || steps <= 0 {
		log.Fatalf("invalid PGSN_STEPS %q", os.Getenv("PGSN_STEPS"))
	}
	cfg.steps = steps

	cfg.history = os.Getenv("PGSN_HISTORY")
	if cfg.history == "" {
		home, _ := os.UserHomeDir()
		cfg.history = filepath.Join(home, ".pgsn_history")
	}
	return cfg
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cfg := loadConfig()
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "repl":
		err = cmdRepl(cfg, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		if _, ok := commands[cmd]; !ok {
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
			os.Exit(2)
		}
		err = run(cfg, cmd, args, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var commands = map[string]func(config, []string, io.Writer) error{
	"eval":   cmdEval,
	"trace":  cmdTrace,
	"doc":    cmdDoc,
	"dot":    cmdDot,
	"put":    cmdPut,
	"get":    cmdGet,
	"list":   cmdList,
	"delete": cmdDelete,
}

// run executes a non-interactive command, writing its output to out.
func run(cfg config, cmd string, args []string, out io.Writer) error {
	f, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	return f(cfg, args, out)
}

func readTerm(path string) (pgsn.Term, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	t, err := pgsn.UnmarshalTerm(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// printResult prints the host value of a normal form, or the term itself
// when it is stuck.
func printResult(out io.Writer, t pgsn.Term) error {
	v, err := pgsn.ToHost(t)
	if err != nil {
		fmt.Fprintln(out, t)
		return err
	}
	return printJSON(out, v)
}

// parseOne parses flags and requires exactly one positional argument.
func parseOne(fs *flag.FlagSet, args []string, what string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func cmdEval(cfg config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	steps := fs.Int("steps", cfg.steps, "reduction step budget")
	workers := fs.Int("workers", runtime.NumCPU(), "parallel evaluations when several files are given")
	trace := fs.Bool("trace", false, "print the reduction trace instead of the value")
	verbose := fs.Bool("v", false, "log reduction progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("eval: expected at least one file")
	}

	terms := make([]pgsn.Term, fs.NArg())
	for i, path := range fs.Args() {
		t, err := readTerm(path)
		if err != nil {
			return err
		}
		terms[i] = t
	}

	if *trace {
		if len(terms) != 1 {
			return errors.New("eval: -trace takes one file")
		}
		return printTrace(out, terms[0], *steps)
	}

	if len(terms) == 1 {
		e := pgsn.Evaluator{Steps: *steps}
		if *verbose {
			e.Logger = log.Default()
			e.LogEvery = 10000
		}
		n, err := e.TryEval(terms[0])
		if err != nil {
			return err
		}
		return printResult(out, n)
	}

	var failed error
	for i, r := range pgsn.FullyEvalAll(context.Background(), terms, *steps, *workers) {
		fmt.Fprintf(out, "%s: ", fs.Arg(i))
		if r.Err != nil {
			fmt.Fprintf(out, "error: %v\n", r.Err)
			failed = errors.New("eval: some terms did not evaluate")
			continue
		}
		if err := printResult(out, r.Term); err != nil {
			failed = err
		}
	}
	return failed
}

func printTrace(out io.Writer, t pgsn.Term, steps int) error {
	tr := pgsn.TraceEval(t, steps, true)
	v, err := pgsn.ToHost(tr.ToValue())
	if err != nil {
		// The result itself may be stuck; fall back to the printed form.
		fmt.Fprintln(out, tr.ToValue())
		return nil
	}
	return printJSON(out, v)
}

func cmdTrace(cfg config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	steps := fs.Int("steps", cfg.steps, "reduction step budget")
	path, err := parseOne(fs, args, "file")
	if err != nil {
		return err
	}
	t, err := readTerm(path)
	if err != nil {
		return err
	}
	return printTrace(out, t, *steps)
}

func readArgument(cfg config, cmd string, args []string) (*gsn.Node, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	steps := fs.Int("steps", cfg.steps, "reduction step budget")
	path, err := parseOne(fs, args, "file")
	if err != nil {
		return nil, err
	}
	t, err := readTerm(path)
	if err != nil {
		return nil, err
	}
	return gsn.FromTerm(t, *steps)
}

func cmdDoc(cfg config, args []string, out io.Writer) error {
	n, err := readArgument(cfg, "doc", args)
	if err != nil {
		return err
	}
	return printJSON(out, gsn.Parts(n))
}

func cmdDot(cfg config, args []string, out io.Writer) error {
	n, err := readArgument(cfg, "dot", args)
	if err != nil {
		return err
	}
	fmt.Fprint(out, gsn.DOT(n))
	return nil
}

func withStore(cfg config, f func(*store.Store) error) error {
	s, err := store.Open(cfg.db)
	if err != nil {
		return err
	}
	defer s.Close()
	return f(s)
}

func cmdPut(cfg config, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("put: expected NAME FILE")
	}
	t, err := readTerm(args[1])
	if err != nil {
		return err
	}
	return withStore(cfg, func(s *store.Store) error {
		return s.Put(context.Background(), args[0], t)
	})
}

func cmdGet(cfg config, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("get: expected NAME")
	}
	return withStore(cfg, func(s *store.Store) error {
		t, err := s.Get(context.Background(), args[0], nil)
		if err != nil {
			return err
		}
		data, err := pgsn.MarshalTerm(t)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	})
}

func cmdList(cfg config, args []string, out io.Writer) error {
	if len(args) != 0 {
		return errors.New("list: takes no arguments")
	}
	return withStore(cfg, func(s *store.Store) error {
		entries, err := s.List(context.Background())
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\n", e.Name, e.Updated)
		}
		return nil
	})
}

func cmdDelete(cfg config, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("delete: expected NAME")
	}
	return withStore(cfg, func(s *store.Store) error {
		return s.Delete(context.Background(), args[0])
	})
}
