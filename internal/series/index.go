package series

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/mrsinham/dicomsift/internal/dicom"
)

// ErrOutsideRoot is returned when the folder to index does not lie under the scan root.
var ErrOutsideRoot = errors.New("folder is outside the scan root")

// MetadataReader reads the series fields of one file. Any error excludes the file from the index.
type MetadataReader interface {
	ReadMetadata(path string) (dicom.Metadata, error)
}

// Progress reports that Done of Total files have been examined; Path is the last one.
type Progress struct {
	Done  int
	Total int
	Path  string
}

// ListFiles returns every regular file under dir, recursively, in lexical order.
// Unreadable subdirectories are skipped; an unreadable dir is an error.
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", dir, err)
	}
	return files, nil
}

// Index reads the header of every file under leaf and groups the files by series UID. Folders
// are recorded relative to root; an empty leaf means root itself. Files that fail to parse or
// lack a series UID are skipped. progress, when set, is called once with Done 0 as soon as the
// file count is known, then once per file.
func Index(root, leaf string, reader MetadataReader, progress func(Progress)) (*Table, error) {
	root, leaf, err := resolveFolders(root, leaf)
	if err != nil {
		return nil, err
	}

	files, err := ListFiles(leaf)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		progress(Progress{Total: len(files)})
	}

	table := NewTable()
	for i, path := range files {
		md, err := reader.ReadMetadata(path)
		if progress != nil {
			progress(Progress{Done: i + 1, Total: len(files), Path: path})
		}
		if err != nil {
			continue
		}

		table.add(md.SeriesUID, path, func() *Record {
			return newRecord(root, path, md)
		})
	}
	return table, nil
}

func newRecord(root, path string, md dicom.Metadata) *Record {
	desc := md.SeriesDescription
	if strings.TrimSpace(desc) == "" {
		desc = NoDescription
	}

	rawDate := md.SeriesDate
	if rawDate == "" {
		rawDate = md.StudyDate
	}

	folder, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		folder = filepath.Dir(path)
	}

	return &Record{
		Description: desc,
		Folder:      folder,
		Date:        FormatDate(rawDate),
	}
}

// resolveFolders makes root and leaf absolute and checks that leaf lies under root.
func resolveFolders(root, leaf string) (string, string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	if leaf == "" {
		return absRoot, absRoot, nil
	}

	absLeaf, err := filepath.Abs(leaf)
	if err != nil {
		return "", "", fmt.Errorf("resolve folder %s: %w", leaf, err)
	}
	rel, err := filepath.Rel(absRoot, absLeaf)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s: %w", leaf, ErrOutsideRoot)
	}
	return absRoot, absLeaf, nil
}
