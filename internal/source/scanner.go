package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir discovers payload files (*.json) in dir and its immediate
// sub-directories. Hidden files and directories are skipped. A missing
// directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if path == dir {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(dir, path)
		depth := len(strings.Split(rel, string(filepath.Separator)))

		if d.IsDir() {
			if depth > 1 {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".json") {
			return nil
		}

		df := DiscoveredFile{
			Path: path,
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
		}
		if depth == 2 {
			df.Dir = filepath.Dir(rel)
		}
		if fi, err := d.Info(); err == nil {
			df.ModTimeNs = fi.ModTime().UnixNano()
			df.SizeBytes = fi.Size()
		}

		files = append(files, df)
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Newest returns the most recently modified file, or false when files is empty.
// Ties go to the later path.
func Newest(files []DiscoveredFile) (DiscoveredFile, bool) {
	if len(files) == 0 {
		return DiscoveredFile{}, false
	}
	best := files[0]
	for _, f := range files[1:] {
		if f.ModTimeNs > best.ModTimeNs || (f.ModTimeNs == best.ModTimeNs && f.Path > best.Path) {
			best = f
		}
	}
	return best, true
}

// Stat builds a DiscoveredFile for a single path given on the command line.
func Stat(path string) (DiscoveredFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return DiscoveredFile{}, err
	}
	name := filepath.Base(path)
	return DiscoveredFile{
		Path:      path,
		Name:      strings.TrimSuffix(name, filepath.Ext(name)),
		ModTimeNs: fi.ModTime().UnixNano(),
		SizeBytes: fi.Size(),
	}, nil
}
