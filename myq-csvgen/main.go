package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/jayjanssen/myq-mon/lib/csvgen"
)

// Exit codes
const (
	OK int = iota
	BAD_ARGS
	WRITE_ERROR
)

// Current Version (passed in on build)
var build_version string
var build_timestamp string

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("myq-csvgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	file := fs.String("o", csvgen.DefaultFile, "output file")
	rows := fs.Int("n", csvgen.DefaultRows, "number of rows")
	width := fs.Int("w", csvgen.DefaultFieldLen, "width of the name fields")
	compress := fs.Bool("z", false, "brotli compress the output, adds .br to the file name")
	seed := fs.Int64("s", 0, "random seed (default: current time)")
	version := fs.Bool("version", false, "print the version")
	fs.BoolVar(version, "v", false, "short for -version")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "myq-csvgen %s (%s)\n\n", build_version, build_timestamp)
		fmt.Fprintln(stderr, "Usage:\n  myq-csvgen [flags]")
		fmt.Fprintln(stderr, "Description:\n  generate a large CSV file of random names for load tests")
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return OK
		}
		return BAD_ARGS
	}
	if *version {
		fmt.Fprintf(stdout, "myq-csvgen %s (%s)\n", build_version, build_timestamp)
		return OK
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return BAD_ARGS
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	opts := csvgen.Options{Rows: *rows, FieldLen: *width}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return BAD_ARGS
	}

	start := time.Now()
	w, path, err := csvgen.Create(*file, *compress)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return WRITE_ERROR
	}

	if err := csvgen.Generate(w, opts, rand.New(rand.NewSource(*seed))); err != nil {
		w.Close()
		fmt.Fprintf(stderr, "Error writing %s: %v\n", path, err)
		return WRITE_ERROR
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(stderr, "Error closing %s: %v\n", path, err)
		return WRITE_ERROR
	}

	elapsed := time.Since(start)
	fmt.Fprintf(stdout, "%s: %d rows, time: %d s %d ms\n", path, *rows, elapsed/time.Second, (elapsed%time.Second)/time.Millisecond)
	return OK
}
