package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"qiv/internal/filelist"
)

var errFileLimit = errors.New("file limit reached")

// Collector expands command-line arguments into image entries.
type Collector struct {
	fs         afero.Fs
	SortMethod int
	MaxFiles   int
	MaxPathLen int

	warnedLimit bool
}

// NewCollector returns a collector using the limits and sort order of config.
func NewCollector(fs afero.Fs, config Config) *Collector {
	return &Collector{
		fs:         fs,
		SortMethod: config.SortMethod,
		MaxFiles:   config.MaxFiles,
		MaxPathLen: config.MaxPathLen,
	}
}

func (c *Collector) sortEntries(entries []filelist.Entry) []filelist.Entry {
	return GetSortStrategy(c.SortMethod).Sort(entries)
}

// add appends entries up to the file limit and reports errFileLimit once
// the list is full.
func (c *Collector) add(list []filelist.Entry, entries ...filelist.Entry) ([]filelist.Entry, error) {
	for _, e := range entries {
		if c.MaxFiles > 0 && len(list) >= c.MaxFiles {
			if !c.warnedLimit {
				log.Printf("Warning: Only the first %d files are used", c.MaxFiles)
				c.warnedLimit = true
			}
			return list, errFileLimit
		}
		list = append(list, e)
	}
	return list, nil
}

func (c *Collector) pathTooLong(path string) bool {
	if c.MaxPathLen > 0 && len(path) > c.MaxPathLen {
		log.Printf("Warning: Skipping path longer than %d bytes: %.40s...", c.MaxPathLen, path)
		return true
	}
	return false
}

func (c *Collector) archiveEntries(path string) []filelist.Entry {
	entries, err := listArchive(c.fs, path)
	if err != nil {
		log.Printf("Warning: Skipping problematic archive %s: %v", path, err)
		return nil
	}
	return c.sortEntries(entries)
}

func (c *Collector) collectDir(root string) []filelist.Entry {
	var found []filelist.Entry
	err := afero.Walk(c.fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Warning: Cannot read %s: %v", path, err)
			return nil
		}
		if fi.IsDir() {
			if fi.Name() == filelist.TrashDir {
				return filepath.SkipDir
			}
			return nil
		}
		if c.pathTooLong(path) {
			return nil
		}
		switch {
		case isSupportedExt(path):
			found = append(found, filelist.Entry{Path: path})
		case isArchiveExt(path):
			found = append(found, c.archiveEntries(path)...)
		}
		if c.MaxFiles > 0 && len(found) >= c.MaxFiles {
			return errFileLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFileLimit) {
		log.Printf("Warning: Walking %s: %v", root, err)
	}
	return c.sortEntries(found)
}

// Collect turns files, directories and archives into the initial list.
// Directories are searched recursively and filtered by extension; files
// named explicitly are kept whatever their extension, since the decoder
// recognises formats by content.
func (c *Collector) Collect(args []string) []filelist.Entry {
	var list []filelist.Entry
	for _, p := range args {
		if c.pathTooLong(p) {
			continue
		}
		info, err := c.fs.Stat(p)
		if err != nil {
			log.Printf("Warning: %v", err)
			continue
		}

		var entries []filelist.Entry
		switch {
		case info.IsDir():
			entries = c.collectDir(p)
		case isArchiveExt(p):
			entries = c.archiveEntries(p)
		default:
			entries = []filelist.Entry{{Path: p}}
		}

		if list, err = c.add(list, entries...); err != nil {
			break
		}
	}
	debugLog("Collected %d entries from %d arguments", len(list), len(args))
	return list
}
