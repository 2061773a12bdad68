package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of a file is read to guess its kind.
const sniffLen = 3072

// FileInfo is one export file found on disk. Kind is the extension the
// parsers dispatch on (".txt", ".html" or ".json"); it differs from the
// extension of Path only when the kind was sniffed.
type FileInfo struct {
	Path  string
	Kind  string
	Mtime int64
	Size  int64
}

var knownKinds = map[string]bool{".txt": true, ".html": true, ".json": true}

// Expand turns command-line arguments into export files. An argument is a
// file, a directory (walked for known extensions) or a doublestar pattern
// such as "export/**/*.html". Duplicates are reported once, in first-seen
// order.
func Expand(args []string) ([]FileInfo, error) {
	var files []FileInfo
	seen := make(map[string]bool)
	add := func(fi FileInfo) {
		if seen[fi.Path] {
			return
		}
		seen[fi.Path] = true
		files = append(files, fi)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			found, err := scanDir(arg)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", arg, err)
			}
			for _, fi := range found {
				add(fi)
			}
		case err == nil:
			fi, ok, err := classify(arg, info)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%s: unsupported file type", arg)
			}
			add(fi)
		case os.IsNotExist(err) && hasMeta(arg):
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
			if err != nil {
				return nil, fmt.Errorf("glob %s: %w", arg, err)
			}
			for _, m := range matches {
				info, err := os.Stat(m)
				if err != nil {
					return nil, err
				}
				fi, ok, err := classify(m, info)
				if err != nil {
					return nil, err
				}
				if ok {
					add(fi)
				}
			}
		default:
			return nil, err
		}
	}

	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// scanDir walks root for files with a known extension. Sniffing is only
// used for explicitly named files.
func scanDir(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !knownKinds[ext] {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Kind:  ext,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}

func classify(path string, info os.FileInfo) (FileInfo, bool, error) {
	fi := FileInfo{
		Path:  path,
		Kind:  strings.ToLower(filepath.Ext(path)),
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
	}
	if knownKinds[fi.Kind] {
		return fi, true, nil
	}

	kind, err := sniff(path)
	if err != nil {
		return FileInfo{}, false, err
	}
	if kind == "" {
		return FileInfo{}, false, nil
	}
	fi.Kind = kind
	return fi, true, nil
}

// sniff guesses the kind of a file from its first bytes.
func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("sniff %s: %w", path, err)
	}
	return kindOf(mimetype.Detect(buf[:n])), nil
}

func kindOf(mt *mimetype.MIME) string {
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("text/html"):
			return ".html"
		case m.Is("application/json"):
			return ".json"
		case m.Is("text/plain"):
			return ".txt"
		}
	}
	return ""
}
