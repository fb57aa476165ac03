package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/agent"
	"github.com/petrkotek/magtape/catalog"
)

// collectFiles walks each of roots (files or directories) and returns one
// BackupItem per regular file whose path matches patterns. Directory
// traversal and wildcard expansion are an external collaborator's job per
// the library's own scope, which is exactly what this command-line
// front end is.
func collectFiles(roots []string, patterns *catalog.PatternSet) ([]agent.BackupItem, error) {
	var items []agent.BackupItem

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !patterns.Match(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			open := func() (io.ReadCloser, error) { return os.Open(path) }
			items = append(items, agent.BackupItem{
				Descriptor: descriptorFromFileInfo(path, info),
				Open:       open,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func descriptorFromFileInfo(path string, info fs.FileInfo) magtape.FileDescriptor {
	var attrs magtape.FileAttr
	mode := info.Mode()
	if mode&0o222 == 0 {
		attrs |= magtape.FileAttrReadOnly
	}
	if mode&fs.ModeSymlink != 0 {
		attrs |= magtape.FileAttrSymlink
	}
	base := filepath.Base(path)
	if len(base) > 0 && base[0] == '.' {
		attrs |= magtape.FileAttrHidden
	}

	return magtape.FileDescriptor{
		FullName:     path,
		Length:       info.Size(),
		Attributes:   attrs,
		LastModified: info.ModTime(),
		LastAccessed: info.ModTime(),
	}
}
