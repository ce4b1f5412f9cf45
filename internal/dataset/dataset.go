// Package dataset reads test sets of tokenized methods: one method per line,
// tokens separated by whitespace.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMissingInput = errors.New("dataset: input file not found")
	ErrEmptyDataset = errors.New("dataset: no methods found")
)

// maxLineSize bounds a single method line.
const maxLineSize = 16 << 20

type Dataset struct {
	// Name is the base name of the file the methods came from.
	Name    string
	Methods [][]string
}

// Parse splits r into token sequences. Blank and whitespace-only lines are
// skipped, so no returned sequence is empty.
func Parse(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var methods [][]string
	for sc.Scan() {
		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}
		methods = append(methods, tokens)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read methods: %w", err)
	}
	return methods, nil
}

// Load parses the file at path. It fails with ErrMissingInput when the file
// does not exist and ErrEmptyDataset when it holds no methods.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	methods, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}
	return &Dataset{Name: filepath.Base(path), Methods: methods}, nil
}

// FromLines builds a dataset from in-memory lines, applying the same rules as Parse.
func FromLines(name string, lines []string) (*Dataset, error) {
	methods, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, ErrEmptyDataset
	}
	return &Dataset{Name: name, Methods: methods}, nil
}
