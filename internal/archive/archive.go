package archive

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"
)

// Terminal errors: when one of these is returned the export cannot be analyzed.
var (
	ErrInvalidArchive     = errors.New("not a valid zip archive")
	ErrEmptyArchive       = errors.New("zip archive is empty")
	ErrAccountNotDetected = errors.New("could not detect username from export folder name")
	ErrClosed             = errors.New("archive is closed")
)

// Archive is a read-only view over an export ZIP held in memory.
type Archive struct {
	names []string
	files map[string]*zip.File
	size  int64
}

// Open validates data as a ZIP archive and indexes its entries by name.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if len(zr.File) == 0 {
		return nil, ErrEmptyArchive
	}

	a := &Archive{
		names: make([]string, 0, len(zr.File)),
		files: make(map[string]*zip.File, len(zr.File)),
		size:  int64(len(data)),
	}
	for _, f := range zr.File {
		a.names = append(a.names, f.Name)
		a.files[f.Name] = f
	}
	return a, nil
}

// Names returns entry names in archive order.
func (a *Archive) Names() []string {
	return a.names
}

// Size is the byte length of the archive.
func (a *Archive) Size() int64 {
	return a.size
}

// ReadEntry returns the contents of the entry with exactly this name.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	if a.files == nil {
		return nil, ErrClosed
	}
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Close drops the entry index. Calling it more than once is safe.
func (a *Archive) Close() error {
	a.files = nil
	return nil
}

// Identity is the account an export belongs to.
type Identity struct {
	Root        string `json:"root" yaml:"root"`
	Username    string `json:"username" yaml:"username"`
	HexUsername string `json:"hex_username" yaml:"hex_username"`
}

// exportRootRe matches "instagram-<username>-<YYYY-MM-DD>". The capture runs
// up to the last date-shaped suffix, so usernames may contain hyphens and digits.
var exportRootRe = regexp.MustCompile(`instagram-(.+)-\d{4}-\d{2}-\d{2}`)

// IdentifyAccount derives the account identity from the leading path segment
// of the first entry.
func IdentifyAccount(names []string) (Identity, error) {
	if len(names) == 0 {
		return Identity{}, ErrEmptyArchive
	}
	root, _, _ := strings.Cut(names[0], "/")

	m := exportRootRe.FindStringSubmatch(root)
	if m == nil {
		return Identity{Root: root}, fmt.Errorf("%w: %q", ErrAccountNotDetected, root)
	}
	return Identity{
		Root:        root,
		Username:    m[1],
		HexUsername: hex.EncodeToString([]byte(m[1])),
	}, nil
}
