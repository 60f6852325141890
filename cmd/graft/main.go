package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/graft/internal/interp"
	"github.com/funvibe/graft/pkg/graft"
	"github.com/funvibe/graft/pkg/tracecache"
)

// useColor follows the NO_COLOR convention (https://no-color.org/) and only
// colors real terminals.
func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func bold(s string) string {
	if useColor() {
		return "\x1b[1m" + s + "\x1b[0m"
	}
	return s
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadGraft(path string) *graft.Graft {
	data, err := os.ReadFile(path)
	if err != nil {
		fail("Error reading %s: %s", path, err)
	}
	g, err := graft.Decode(data)
	if err != nil {
		fail("Error decoding %s: %s", path, err)
	}
	return g
}

func handleHelp() bool {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "-h", "--help":
		default:
			return false
		}
	} else {
		return false
	}
	prog := os.Args[0]
	fmt.Printf("Usage: %s <command> [arguments]\n\n", prog)
	fmt.Println("Commands:")
	fmt.Println("  show <file>                   print a graft as YAML")
	fmt.Println("  digest <file>                 print the content digest of a graft")
	fmt.Println("  eval <file> [name=value...]   evaluate a graft with optional bindings")
	fmt.Println("  store <db> <file>             add a graft to a trace cache")
	fmt.Println("  fetch <db> <digest>           print a cached graft by digest")
	return true
}

func handleShow() bool {
	if len(os.Args) < 2 || os.Args[1] != "show" {
		return false
	}
	if len(os.Args) != 3 {
		fail("Usage: %s show <file>", os.Args[0])
	}
	g := loadGraft(os.Args[2])
	out, err := graft.EncodeYAML(g)
	if err != nil {
		fail("Error encoding %s: %s", os.Args[2], err)
	}
	if g.IsFunction() {
		fmt.Printf("%s (%s)\n", bold("function graft"), strings.Join(g.Parameters(), ", "))
	}
	os.Stdout.Write(out)
	return true
}

func handleDigest() bool {
	if len(os.Args) < 2 || os.Args[1] != "digest" {
		return false
	}
	if len(os.Args) != 3 {
		fail("Usage: %s digest <file>", os.Args[0])
	}
	d, err := graft.Digest(loadGraft(os.Args[2]))
	if err != nil {
		fail("Error digesting %s: %s", os.Args[2], err)
	}
	fmt.Println(d)
	return true
}

// parseBinding turns "x=3" into a name and a JSON-ish scalar: integer, float,
// bool, null, or string.
func parseBinding(arg string) (string, any, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("binding %q is not name=value", arg)
	}
	switch raw {
	case "true":
		return name, true, nil
	case "false":
		return name, false, nil
	case "null":
		return name, nil, nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return name, i, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return name, f, nil
	}
	return name, raw, nil
}

func handleEval() bool {
	if len(os.Args) < 2 || os.Args[1] != "eval" {
		return false
	}
	if len(os.Args) < 3 {
		fail("Usage: %s eval <file> [name=value...]", os.Args[0])
	}
	g := loadGraft(os.Args[2])

	bindings := map[string]any{}
	for _, arg := range os.Args[3:] {
		name, v, err := parseBinding(arg)
		if err != nil {
			fail("%s", err)
		}
		bindings[name] = v
	}

	result, err := interp.New().Eval(g, bindings)
	if err != nil {
		fail("Error evaluating %s: %s", os.Args[2], err)
	}
	if _, ok := result.(*interp.Closure); ok {
		fmt.Printf("<function (%s)>\n", strings.Join(g.Parameters(), ", "))
		return true
	}
	fmt.Printf("%v\n", result)
	return true
}

func handleStore() bool {
	if len(os.Args) < 2 || os.Args[1] != "store" {
		return false
	}
	if len(os.Args) != 4 {
		fail("Usage: %s store <db> <file>", os.Args[0])
	}
	store, err := tracecache.OpenSQLStore(os.Args[2])
	if err != nil {
		fail("Error opening cache: %s", err)
	}
	defer store.Close()
	digest, err := tracecache.New(store).Add(loadGraft(os.Args[3]))
	if err != nil {
		fail("Error storing %s: %s", os.Args[3], err)
	}
	fmt.Println(digest)
	return true
}

func handleFetch() bool {
	if len(os.Args) < 2 || os.Args[1] != "fetch" {
		return false
	}
	if len(os.Args) != 4 {
		fail("Usage: %s fetch <db> <digest>", os.Args[0])
	}
	store, err := tracecache.OpenSQLStore(os.Args[2])
	if err != nil {
		fail("Error opening cache: %s", err)
	}
	defer store.Close()
	g, ok, err := tracecache.New(store).Lookup(os.Args[3])
	if err != nil {
		fail("Error reading cache: %s", err)
	}
	if !ok {
		fail("No trace with digest %s", os.Args[3])
	}
	out, err := g.MarshalJSON()
	if err != nil {
		fail("Error encoding trace: %s", err)
	}
	fmt.Printf("%s\n", out)
	return true
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleShow() {
		return
	}
	if handleDigest() {
		return
	}
	if handleEval() {
		return
	}
	if handleStore() {
		return
	}
	if handleFetch() {
		return
	}

	if len(os.Args) < 2 {
		fail("Usage: %s <command> [arguments], see '%s help'", os.Args[0], os.Args[0])
	}
	fail("Unknown command %q, see '%s help'", os.Args[1], os.Args[0])
}
