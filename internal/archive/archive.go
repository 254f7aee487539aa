// Package archive packages a completed run directory into a zip next to it,
// for download delivery by the HTTP surface or for manual handover.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Pack zips the run directory and returns the archive path. The archive is
// written alongside the run directory as <dir>.zip; entry paths are kept
// relative to the run directory so the report's evidence links stay valid
// after extraction.
func Pack(runDir string) (string, error) {
	zipPath := filepath.Clean(runDir) + ".zip"
	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	err = filepath.WalkDir(runDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(runDir, path)
		if err != nil {
			return err
		}
		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("pack %s: %w", runDir, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize archive: %w", err)
	}
	return zipPath, nil
}
