package main

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
	"github.com/spf13/afero"

	"qiv/internal/filelist"
)

var errEntryNotFound = errors.New("entry not found")

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// openSized opens path on fs and returns it with its size, as the zip and
// 7z readers need random access.
func openSized(fs afero.Fs, path string) (afero.File, int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func archiveEntry(archivePath, name string) filelist.Entry {
	return filelist.Entry{
		Path:        archivePath + ":" + name,
		ArchivePath: archivePath,
		EntryPath:   name,
	}
}

func listZip(fs afero.Fs, archivePath string) ([]filelist.Entry, error) {
	f, size, err := openSized(fs, archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := zip.NewReader(f, size)
	if err != nil {
		return nil, err
	}
	var entries []filelist.Entry
	for _, zf := range r.File {
		if !zf.FileInfo().IsDir() && isSupportedExt(zf.Name) {
			entries = append(entries, archiveEntry(archivePath, zf.Name))
		}
	}
	return entries, nil
}

func listRar(fs afero.Fs, archivePath string) ([]filelist.Entry, error) {
	f, err := fs.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}
	var entries []filelist.Entry
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir && isSupportedExt(header.Name) {
			entries = append(entries, archiveEntry(archivePath, header.Name))
		}
	}
	return entries, nil
}

func list7z(fs afero.Fs, archivePath string) ([]filelist.Entry, error) {
	f, size, err := openSized(fs, archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return nil, err
	}
	var entries []filelist.Entry
	for _, sf := range r.File {
		if !sf.FileInfo().IsDir() && isSupportedExt(sf.Name) {
			entries = append(entries, archiveEntry(archivePath, sf.Name))
		}
	}
	return entries, nil
}

// listArchive returns the image entries of a zip, rar or 7z archive in
// archive order.
func listArchive(fs afero.Fs, archivePath string) ([]filelist.Entry, error) {
	switch ext := strings.ToLower(filepath.Ext(archivePath)); ext {
	case ".zip":
		return listZip(fs, archivePath)
	case ".rar":
		return listRar(fs, archivePath)
	case ".7z":
		return list7z(fs, archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}

func readZipEntry(fs afero.Fs, archivePath, entryPath string) ([]byte, error) {
	f, size, err := openSized(fs, archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := zip.NewReader(f, size)
	if err != nil {
		return nil, err
	}
	for _, zf := range r.File {
		if zf.Name != entryPath {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s in %s", errEntryNotFound, entryPath, archivePath)
}

func readRarEntry(fs afero.Fs, archivePath, entryPath string) ([]byte, error) {
	f, err := fs.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entryPath {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", errEntryNotFound, entryPath, archivePath)
}

func read7zEntry(fs afero.Fs, archivePath, entryPath string) ([]byte, error) {
	f, size, err := openSized(fs, archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return nil, err
	}
	for _, sf := range r.File {
		if sf.Name != entryPath {
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s in %s", errEntryNotFound, entryPath, archivePath)
}

// readEntry returns the raw file bytes behind an entry.
func readEntry(fs afero.Fs, e filelist.Entry) ([]byte, error) {
	if !e.IsArchived() {
		return afero.ReadFile(fs, e.Path)
	}
	switch ext := strings.ToLower(filepath.Ext(e.ArchivePath)); ext {
	case ".zip":
		return readZipEntry(fs, e.ArchivePath, e.EntryPath)
	case ".rar":
		return readRarEntry(fs, e.ArchivePath, e.EntryPath)
	case ".7z":
		return read7zEntry(fs, e.ArchivePath, e.EntryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}
