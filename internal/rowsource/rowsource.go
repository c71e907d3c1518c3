package rowsource

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrRead wraps every failure to open or read a dataset.
var ErrRead = errors.New("read dataset")

// maxLineSize bounds a single row; longer rows fail the read.
const maxLineSize = 1024 * 1024

// Stdin is the path that selects standard input.
const Stdin = "-"

// gzipFile closes both the gzip reader and the file under it.
type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// Open opens a dataset. Files ending in .gz are decompressed and "-" reads
// standard input.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: opening gzip reader for %s: %w", ErrRead, path, err)
		}
		return &gzipFile{Reader: gz, f: f}, nil
	}

	return f, nil
}

// Read skips the header line of r and returns up to maxRows non-empty rows
// in order. maxRows <= 0 reads every row.
func Read(r io.Reader, maxRows int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	// Header
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: scanner error: %w", ErrRead, err)
		}
		return nil, nil
	}

	var rows []string
	for (maxRows <= 0 || len(rows) < maxRows) && scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanner error: %w", ErrRead, err)
	}
	return rows, nil
}

// ReadFile opens path, reads up to maxRows rows after the header and closes
// the file again.
func ReadFile(path string, maxRows int) ([]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rows, err := Read(rc, maxRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Expand resolves glob patterns (including **) to the files they match.
// Patterns without glob characters are returned as-is so that a missing
// file surfaces as a read error later. Duplicates are dropped.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if pattern == Stdin || !hasMeta(pattern) {
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
