// store.go
//
// Supplier quality management portal data service
// Copyright (c) 2026 SQM Works <oss@sqmworks.dev>
//
// This file is part of supplier-portal.
// supplier-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// supplier-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with supplier-portal.
// If not, see <https://www.gnu.org/licenses/>.

// Package attachment persists uploaded files under the configured upload root
// and serves them back by relative path. Upload order is write-then-insert and
// delete order is file-then-row, so a crash can orphan a file or a row but
// never leaves a metadata row the upload handler reported as failed.
package attachment

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/sqmworks/supplier-portal/internal/config"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// Store writes and resolves files below one upload root.
type Store struct {
	root     string
	maxBytes int64
}

// NewStore creates a Store from the application configuration. The upload
// root is expected to be absolute (config.Load canonicalizes it).
func NewStore(cfg *config.Config) *Store {
	return &Store{root: cfg.UploadDir, maxBytes: cfg.MaxUploadBytes}
}

// Root returns the absolute upload root directory.
func (s *Store) Root() string {
	return s.root
}

// Upload carries one pending file save.
type Upload struct {
	// Dir is the directory under the upload root, as path segments. Each
	// segment is sanitized individually, so owner identifiers cannot inject
	// separators.
	Dir []string

	OriginalName string
	DeclaredMIME string
	Payload      []byte
	Allowed      ExtensionSet
}

// StoredFile describes a successfully written file.
type StoredFile struct {
	StoredName string
	RelPath    string // forward-slash separated, relative to the upload root
	Size       int64
}

// Save validates the upload policy, writes the payload to disk and returns
// the storage location. Nothing is written when validation fails; the caller
// inserts the metadata row only after Save succeeds.
func (s *Store) Save(up Upload) (*StoredFile, error) {
	if len(up.Payload) == 0 {
		return nil, types.NewValidationError("no file selected")
	}
	if strings.TrimSpace(up.OriginalName) == "" {
		return nil, types.NewValidationError("no file selected")
	}
	if s.maxBytes > 0 && int64(len(up.Payload)) > s.maxBytes {
		return nil, types.NewValidationError("file exceeds the maximum upload size of %d bytes", s.maxBytes)
	}

	ext, err := ResolveExtension(up.OriginalName, up.DeclaredMIME)
	if err != nil {
		return nil, err
	}
	if !up.Allowed.Contains(ext) {
		return nil, types.NewValidationError("file type .%s is not allowed here", ext)
	}

	storedName := uuid.New().String() + "." + ext

	segments := make([]string, 0, len(up.Dir))
	for _, seg := range up.Dir {
		segments = append(segments, SanitizeSegment(seg))
	}
	relDir := path.Join(segments...)

	absDir := filepath.Join(s.root, filepath.FromSlash(relDir))
	// Create-if-absent is idempotent, safe under concurrent uploads to the
	// same entity directory.
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	absPath := filepath.Join(absDir, storedName)
	if err := os.WriteFile(absPath, up.Payload, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	// Size is measured from the written file, not taken from the request.
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}

	return &StoredFile{
		StoredName: storedName,
		RelPath:    path.Join(relDir, storedName),
		Size:       info.Size(),
	}, nil
}

// Resolve turns a stored relative path into an absolute one, verifying it
// stays inside the upload root. Stored paths are trusted data, but a
// corrupted or tampered value must not escape the tree.
func (s *Store) Resolve(relPath string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))
	abs, err := filepath.Abs(abs)
	if err != nil {
		return "", types.NewBadPathError("invalid path")
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", types.NewBadPathError("invalid path")
	}
	return abs, nil
}

// Read resolves the path and loads the file, reporting not-found for a
// metadata row whose physical file has gone missing.
func (s *Store) Read(relPath string) ([]byte, error) {
	abs, err := s.Resolve(relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, types.NewNotFoundError("file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	return data, nil
}

// Remove deletes the physical file best-effort: a missing file is fine (the
// row is the authoritative record being removed), other I/O errors are logged
// and swallowed so cleanup never blocks the row delete.
func (s *Store) Remove(relPath string) {
	abs, err := s.Resolve(relPath)
	if err != nil {
		log.Printf("attachment remove: %v (rel_path=%q)", err, relPath)
		return
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		log.Printf("attachment remove: %v", err)
	}
}

// OpenOnHost opens the file with the host's default application. Single-user
// desktop deployments use this to jump from the browser to the local viewer.
func (s *Store) OpenOnHost(relPath string) error {
	abs, err := s.Resolve(relPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return types.NewNotFoundError("file not found")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", abs)
	case "darwin":
		cmd = exec.Command("open", abs)
	default:
		cmd = exec.Command("xdg-open", abs)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open on host: %w", err)
	}
	return nil
}

// ResolveExtension determines the storage extension for an upload: the
// original filename wins, the declared MIME type is the fallback, and an
// upload resolving through neither is rejected before any disk write.
func ResolveExtension(originalName, declaredMIME string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext != "" {
		return ext, nil
	}
	if ext, ok := mimeExtensions[strings.ToLower(declaredMIME)]; ok {
		return ext, nil
	}
	return "", types.NewValidationError("unable to determine the file extension")
}

// SanitizeSegment reduces an owner identifier to a safe path segment: path
// separators and shell-unfriendly characters are dropped, spaces become
// underscores, leading dots are stripped.
func SanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "unnamed"
	}
	return out
}
