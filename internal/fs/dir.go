package fs

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FoundFile is one file located by FindFiles, split into its containing
// directory and its filename.
type FoundFile struct {
	Dir  string
	Name string
}

// Path returns the full path of the found file.
func (f FoundFile) Path() string {
	return filepath.Join(f.Dir, f.Name)
}

// FindFiles walks the search directories and returns every file matching one
// of the extensions, excluding exact filename matches and anything under the
// excluded directories. Results are sorted for stable iteration.
func FindFiles(extensions, searchDirs, excludedFilenames, excludedDirs []string) ([]FoundFile, error) {
	excludedAbs := make([]string, 0, len(excludedDirs))
	for _, d := range excludedDirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		excludedAbs = append(excludedAbs, abs)
	}

	var found []FoundFile
	for _, dir := range searchDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if isExcludedDir(path, excludedAbs) {
					return filepath.SkipDir
				}
				return nil
			}
			if !HasExtension(d.Name(), extensions) {
				return nil
			}
			if slices.Contains(excludedFilenames, d.Name()) {
				return nil
			}
			found = append(found, FoundFile{Dir: filepath.Dir(path), Name: d.Name()})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(found, func(a, b FoundFile) int {
		return strings.Compare(a.Path(), b.Path())
	})
	return found, nil
}

// isExcludedDir reports whether path sits at or below one of the excluded
// directories. All comparisons use absolute paths.
func isExcludedDir(path string, excludedAbs []string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, ex := range excludedAbs {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
