// Package csvgen writes large CSV files of random names for bulk load tests.
package csvgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/andybalholm/brotli"
)

// Defaults for the command line
const (
	DefaultFile     = "junk.csv"
	DefaultRows     = 10000000
	DefaultFieldLen = 20
)

// Header is the first line of every file
const Header = "firstname,lastname,country,country_code"

const nameFields = 3

// ErrInvalidOptions is returned for a negative row count or a field width
// below one
var ErrInvalidOptions = errors.New("invalid options")

// Options control the generated rows
type Options struct {
	Rows     int
	FieldLen int
}

// Validate rejects options Generate cannot honor
func (o Options) Validate() error {
	if o.Rows < 0 || o.FieldLen < 1 {
		return fmt.Errorf("%w: rows %d, field length %d", ErrInvalidOptions, o.Rows, o.FieldLen)
	}
	return nil
}

// Generate writes the header and opts.Rows lines of three random lowercase
// fields and a two letter uppercase code.
func Generate(w io.Writer, opts Options, rng *rand.Rand) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, 1<<16)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}

	line := make([]byte, 0, nameFields*(opts.FieldLen+1)+3)
	for row := 0; row < opts.Rows; row++ {
		line = line[:0]
		for f := 0; f < nameFields; f++ {
			for i := 0; i < opts.FieldLen; i++ {
				line = append(line, byte('a'+rng.Intn(26)))
			}
			line = append(line, ',')
		}
		line = append(line, byte('A'+rng.Intn(26)), byte('A'+rng.Intn(26)), '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type brotliFile struct {
	*brotli.Writer
	f *os.File
}

func (b *brotliFile) Close() error {
	return errors.Join(b.Writer.Close(), b.f.Close())
}

// Create truncates path for writing. With compress the stream is brotli
// encoded and ".br" is appended to the name when missing.
func Create(path string, compress bool) (io.WriteCloser, string, error) {
	if compress && !strings.HasSuffix(path, ".br") {
		path += ".br"
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, path, err
	}
	if !compress {
		return f, path, nil
	}
	return &brotliFile{Writer: brotli.NewWriterLevel(f, brotli.DefaultCompression), f: f}, path, nil
}
