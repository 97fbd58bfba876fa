package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/graeme-hill/simpc-go/lib"
	"github.com/k0kubun/pp/v3"
)

const databaseEnv = "SIMPC_DATABASE_URL"

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: simpc <command> [arguments]

Commands:
  run FILE [-rows N] [-cols N] [-seed N] [-bits] [-step] [-debug]
  step FILE [-rows N] [-cols N] [-seed N] [-bits]
  check FILE [-rows N] [-cols N]
  tokens FILE
  save -name NAME FILE [-db CONN]
  load -name NAME [-db CONN]
  sessions [-db CONN]`)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("simpc: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "run":
		runCommand(args)
	case "step":
		stepCommand(args)
	case "check":
		checkCommand(args)
	case "tokens":
		tokensCommand(args)
	case "save":
		saveCommand(args)
	case "load":
		loadCommand(args)
	case "sessions":
		sessionsCommand(args)
	default:
		usage()
		os.Exit(2)
	}
}

// parseWithFile accepts the file either before or after the flags.
func parseWithFile(fs *flag.FlagSet, args []string) string {
	var path string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		path = args[0]
		args = args[1:]
	}
	fs.Parse(args)
	if path == "" {
		path = fs.Arg(0)
	}
	if path == "" {
		log.Fatalf("%s: missing FILE", fs.Name())
	}
	return path
}

func configFlags(fs *flag.FlagSet) func() lib.Config {
	defaults := lib.DefaultConfig()
	rows := fs.Int("rows", defaults.Rows, "number of memory rows")
	cols := fs.Int("cols", defaults.BytesPerRow, "bytes per memory row")
	seed := fs.Int64("seed", 0, "seed for uninitialized values, 0 uses the clock")
	return func() lib.Config {
		return lib.Config{Rows: *rows, BytesPerRow: *cols, Seed: *seed}
	}
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	config := configFlags(fs)
	bits := fs.Bool("bits", false, "show raw bits instead of values")
	step := fs.Bool("step", false, "print memory after every statement")
	debug := fs.Bool("debug", false, "dump statements and slot writes to stderr")
	path := parseWithFile(fs, args)

	program, err := lib.ReadProgramFile(path)
	if err != nil {
		log.Fatal(err)
	}
	mem, err := lib.NewMemory(config())
	if err != nil {
		log.Fatal(err)
	}
	if *debug {
		mem.Observe(debugObserver{})
	}

	opts := lib.RenderOptions{RawBits: *bits}
	runner := lib.NewRunner(mem, program.Source)
	for {
		if *debug {
			dumpNextStatement(runner)
		}
		more, err := runner.Step()
		if *step && runner.ActiveLine() > 0 {
			fmt.Printf("line %d: %s\n", runner.ActiveLine(), strings.TrimSpace(runner.Lines()[runner.ActiveLine()-1]))
			render(mem, opts)
		}
		if err != nil {
			if !*step {
				render(mem, opts)
			}
			log.Fatal(err)
		}
		if !more {
			break
		}
	}

	if !*step {
		render(mem, opts)
	}
}

func render(mem *lib.Memory, opts lib.RenderOptions) {
	if err := lib.RenderTable(os.Stdout, mem, opts); err != nil {
		log.Fatal(err)
	}
}

func dumpNextStatement(runner *lib.Runner) {
	lines := runner.Lines()
	for i := runner.ActiveLine(); i < len(lines); i++ {
		stmt, err := lib.Parse(strings.TrimSpace(lines[i]))
		if err != nil {
			return
		}
		if _, empty := stmt.(lib.EmptyStatement); !empty {
			pp.Fprintf(os.Stderr, "line %v: %v\n", i+1, stmt)
			return
		}
	}
}

type debugObserver struct{}

func (debugObserver) SlotChanged(ev lib.SlotEvent) {
	pp.Fprintf(os.Stderr, "write %v\n", ev)
}

func (debugObserver) MemoryCleared() {
	pp.Fprintln(os.Stderr, "memory cleared")
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	config := configFlags(fs)
	path := parseWithFile(fs, args)

	program, err := lib.ReadProgramFile(path)
	if err != nil {
		log.Fatal(err)
	}
	cfg := config()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	errs := lib.CheckProgram(cfg, program.Source)
	for _, err := range errs {
		fmt.Println(err)
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", program.Name)
}

func tokensCommand(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	path := parseWithFile(fs, args)

	program, err := lib.ReadProgramFile(path)
	if err != nil {
		log.Fatal(err)
	}
	for i, line := range strings.Split(program.Source, "\n") {
		descriptions, err := lib.Tokenize(line)
		if err != nil {
			log.Fatalf("line %d: %v", i+1, err)
		}
		for _, d := range descriptions {
			fmt.Printf("%d:%s\n", i+1, d)
		}
	}
}

func databaseFlag(fs *flag.FlagSet) *string {
	return fs.String("db", os.Getenv(databaseEnv), "postgres connection string (default $"+databaseEnv+")")
}

func openStore(ctx context.Context, conn string) *lib.SessionStore {
	if conn == "" {
		log.Fatalf("no database, pass -db or set %s", databaseEnv)
	}
	store, err := lib.OpenSessionStore(ctx, conn)
	if err != nil {
		log.Fatal(err)
	}
	return store
}

func saveCommand(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	db := databaseFlag(fs)
	name := fs.String("name", "", "session name, defaults to the file name")
	caret := fs.Int("caret", 0, "caret position to store")
	path := parseWithFile(fs, args)

	program, err := lib.ReadProgramFile(path)
	if err != nil {
		log.Fatal(err)
	}
	if *name == "" {
		*name = program.Name
	}

	ctx := context.Background()
	store := openStore(ctx, *db)
	defer store.Close()

	err = store.Save(ctx, lib.Session{Name: *name, Source: program.Source, Caret: *caret})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("saved %s\n", *name)
}

func loadCommand(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	db := databaseFlag(fs)
	name := fs.String("name", "", "session name")
	fs.Parse(args)
	if *name == "" {
		log.Fatal("load: -name is required")
	}

	ctx := context.Background()
	store := openStore(ctx, *db)
	defer store.Close()

	session, err := store.Load(ctx, *name)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(session.Source)
	if !strings.HasSuffix(session.Source, "\n") {
		fmt.Println()
	}
}

func sessionsCommand(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	db := databaseFlag(fs)
	fs.Parse(args)

	ctx := context.Background()
	store := openStore(ctx, *db)
	defer store.Close()

	sessions, err := store.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range sessions {
		lines := len(strings.Split(s.Source, "\n"))
		fmt.Printf("%-20s %4d lines  %s\n", s.Name, lines, s.UpdatedAt.Format(time.RFC3339))
	}
}
