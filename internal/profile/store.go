package profile

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

// ErrNotExist reports that a category's store is absent from the profile.
// Callers treat it as "no data", not as a failure.
var ErrNotExist = errors.New("store does not exist")

// sqliteMagic is the first 16 bytes of any SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// tempFs is where store copies are written; always the host filesystem
// because the SQLite driver opens files by path.
var tempFs afero.Fs = afero.NewOsFs()

// Store is a read-only handle on a copied SQLite store.
type Store struct {
	DB *sql.DB
	// Path is the original location inside the profile.
	Path string

	cleanup func()
}

// OpenStore copies the SQLite database at path out of fs and opens the copy
// read-only. It returns an error wrapping ErrNotExist when the store is absent.
// The caller must Close the store, which also removes the copy.
func OpenStore(fs afero.Fs, path string) (*Store, error) {
	tempDir, cleanup, err := SafeCopy(fs, path)
	if err != nil {
		return nil, err
	}
	copied := filepath.Join(tempDir, filepath.Base(path))
	if err := checkSQLite(copied); err != nil {
		cleanup()
		return nil, err
	}
	db, err := OpenDB(copied)
	if err != nil {
		cleanup()
		return nil, err
	}
	return &Store{DB: db, Path: path, cleanup: cleanup}, nil
}

// Close closes the database and removes its temporary copy.
func (s *Store) Close() error {
	err := s.DB.Close()
	if s.cleanup != nil {
		s.cleanup()
	}
	return err
}

// OpenDB opens a SQLite database in read-only mode and checks the connection.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("error: cannot open database %s: %w", filepath.Base(path), err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: database %s ping failed: %w", filepath.Base(path), err)
	}
	return db, nil
}

// SafeCopy copies a SQLite store (and its -wal and -shm companions if they
// exist) from fs to a temporary directory on the host filesystem. This
// prevents locking conflicts with the browser that owns the database.
//
// Returns the temporary directory path, a cleanup function that removes the
// temp directory, and an error. The caller MUST call cleanup when done.
func SafeCopy(fs afero.Fs, srcPath string) (tempDir string, cleanup func(), err error) {
	info, err := fs.Stat(srcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotExist, srcPath)
		}
		return "", nil, fmt.Errorf("error: cannot stat %s: %w", srcPath, err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("error: %s is a directory, expected a database file", srcPath)
	}
	if info.Size() == 0 {
		return "", nil, fmt.Errorf("error: database at %s is empty or corrupted", srcPath)
	}

	tempDir, err = afero.TempDir(tempFs, "", "chromeimport-")
	if err != nil {
		return "", nil, fmt.Errorf("error: cannot create temp directory: %w", err)
	}
	cleanup = func() {
		tempFs.RemoveAll(tempDir)
	}

	baseName := filepath.Base(srcPath)
	if err := copyFile(fs, srcPath, filepath.Join(tempDir, baseName)); err != nil {
		cleanup()
		return "", nil, err
	}

	// WAL and SHM are best-effort
	for _, suffix := range []string{"-wal", "-shm"} {
		companion := srcPath + suffix
		if ok, _ := afero.Exists(fs, companion); ok {
			_ = copyFile(fs, companion, filepath.Join(tempDir, baseName+suffix))
		}
	}
	return tempDir, cleanup, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("error: cannot open source file %s: %w", src, err)
	}
	defer in.Close()

	out, err := tempFs.Create(dst)
	if err != nil {
		return fmt.Errorf("error: cannot create destination file %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("error: cannot copy file: %w", err)
	}
	return nil
}

func checkSQLite(path string) error {
	f, err := tempFs.Open(path)
	if err != nil {
		return fmt.Errorf("error: cannot open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("error: %s is not a SQLite database", filepath.Base(path))
	}
	if !bytes.Equal(header, sqliteMagic) {
		return fmt.Errorf("error: %s is not a SQLite database", filepath.Base(path))
	}
	return nil
}

// ReadFile reads a JSON store such as Bookmarks or Preferences.
// It returns an error wrapping ErrNotExist when the file is absent.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("error: cannot read %s: %w", path, err)
	}
	return data, nil
}
