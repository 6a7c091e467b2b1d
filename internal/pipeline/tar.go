package pipeline

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writes a directory tree to w as a tar stream.
//
// Entries are named relative to the tree root, so extracting the stream into
// a directory reproduces the tree's contents directly (no wrapping
// directory).
func writeTreeToTar(w io.Writer, root string) error {
	tw := tar.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		return writeTarEntry(tw, path, filepath.ToSlash(relPath), d)
	})
	if err != nil {
		tw.Close()
		return err
	}

	return tw.Close()
}

// Writes a single file to w as a one-entry tar stream with the given name.
func writeFileToTar(w io.Writer, hostPath, name string) error {
	tw := tar.NewWriter(w)

	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return err
	}

	return tw.Close()
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}

// Extracts a tar stream into dest on the host.
//
// Entry names that escape dest are rejected. Only regular files and
// directories are materialized; other entry types are skipped.
func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		path, err := securePath(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, os.FileMode(header.Mode)&os.ModePerm); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := writeRegularFile(path, os.FileMode(header.Mode)&os.ModePerm, tr); err != nil {
				return err
			}
		}
	}
}

// Joins an archive entry name to dest, rejecting names that traverse out.
func securePath(dest, name string) (string, error) {
	path := filepath.Join(dest, filepath.FromSlash(name))
	if path != dest && !strings.HasPrefix(path, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return path, nil
}

// Writes a single regular file from a tar reader.
func writeRegularFile(path string, mode os.FileMode, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
