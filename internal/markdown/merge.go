package markdown

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MergeDir concatenates every file in dir, sorted by name, into a single
// output file separated by blank lines. Unreadable entries are logged and
// skipped. Returns the number of files merged.
func MergeDir(dir, outputPath string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, &StructuringIOError{Path: dir, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var sb strings.Builder
	merged := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("skipping unreadable file", "path", path, "error", err)
			continue
		}
		sb.Write(data)
		sb.WriteString("\n\n")
		merged++
	}

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0o644); err != nil {
		return 0, &StructuringIOError{Path: outputPath, Err: err}
	}

	return merged, nil
}
