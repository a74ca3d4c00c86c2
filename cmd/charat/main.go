// Command charat prints characters of a UTF-8 text file by character index.
//
//	charat [-search linear|binary] [-stats] FILE INDEX...
//
// An INDEX is either a single 0-based character index N, or an inclusive
// range N-M. For every index charat prints the code point, the character,
// its display width and its Unicode name.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/runenames"

	"github.com/npillmayer/unicodeindex"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("charat", flag.ContinueOnError)
	flags.SetOutput(stderr)
	search := flags.String("search", "binary", "checkpoint search strategy (linear, binary)")
	stats := flags.Bool("stats", false, "print checkpoint cache statistics")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: charat [-search linear|binary] [-stats] FILE INDEX...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 2 {
		flags.Usage()
		return 2
	}
	strategy, err := parseStrategy(*search)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	var indices []int
	for _, arg := range flags.Args()[1:] {
		idx, err := parseIndices(arg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		indices = append(indices, idx...)
	}
	ui, err := unicodeindex.Open(flags.Arg(0), unicodeindex.WithSearch(strategy))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer ui.Close()
	status := 0
	for _, index := range indices {
		r, err := ui.CharacterAt(index)
		if err != nil {
			fmt.Fprintf(stderr, "%d: %v\n", index, err)
			status = 1
			continue
		}
		fmt.Fprintln(stdout, describe(index, r))
	}
	if *stats {
		s := ui.Stats()
		fmt.Fprintf(stdout, "search=%s checkpoints=%d covered=%d/%d bytes (%.1f%%)",
			s.Strategy, s.Checkpoints, s.CoveredBytes, s.Size, s.Coverage()*100)
		if s.Exhausted {
			fmt.Fprintf(stdout, " characters=%d", s.TotalChars)
		}
		fmt.Fprintln(stdout)
	}
	return status
}

func parseStrategy(name string) (unicodeindex.SearchStrategy, error) {
	switch name {
	case "binary":
		return unicodeindex.BinarySearch, nil
	case "linear":
		return unicodeindex.LinearSearch, nil
	}
	return 0, fmt.Errorf("unknown search strategy %q", name)
}

// parseIndices parses "N" or "N-M" into a list of indices.
func parseIndices(arg string) ([]int, error) {
	from, to, isRange := strings.Cut(arg, "-")
	lo, err := strconv.Atoi(from)
	if err != nil || lo < 0 {
		return nil, fmt.Errorf("invalid index %q", arg)
	}
	if !isRange {
		return []int{lo}, nil
	}
	hi, err := strconv.Atoi(to)
	if err != nil || hi < lo {
		return nil, fmt.Errorf("invalid index range %q", arg)
	}
	indices := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		indices = append(indices, i)
	}
	return indices, nil
}

func describe(index int, r rune) string {
	name := runenames.Name(r)
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%d\tU+%04X\t%q\twidth=%d\t%s", index, r, r, runewidth.RuneWidth(r), name)
}
