package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sashajenner/pod5-file-format/internal/fast5"
)

// Discover expands the configured input paths into the list of fast5 files
// to convert. Files are taken as given when they carry the fast5 extension;
// directories are searched one level deep, or fully when recursive is set.
// The result is deduplicated and sorted for deterministic dispatch order.
func Discover(inputs []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, input := range inputs {
		fi, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat input %s: %w", input, err)
		}

		if !fi.IsDir() {
			if isFast5(input) {
				add(input)
			}
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if !recursive && path != input {
					return filepath.SkipDir
				}
				return nil
			}
			if isFast5(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("search input %s: %w", input, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isFast5(path string) bool {
	return strings.EqualFold(filepath.Ext(path), fast5.Ext)
}
