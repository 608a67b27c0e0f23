package attachment_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/config"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// setupTestStore creates a Store rooted at a temporary directory
func setupTestStore(t *testing.T) *attachment.Store {
	cfg := &config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1024 * 1024,
	}
	return attachment.NewStore(cfg)
}

// TestSaveAndRead tests the write-then-read round trip
func TestSaveAndRead(t *testing.T) {
	store := setupTestStore(t)
	payload := []byte("drawing content")

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{"suppliers", "ZSU0026419", "parts", "PN-1", "drawings"},
		OriginalName: "bracket_revA.pdf",
		Payload:      payload,
		Allowed:      attachment.DrawingExtensions,
	})
	if err != nil {
		t.Fatalf("Failed to save upload: %v", err)
	}

	if stored.Size != int64(len(payload)) {
		t.Errorf("Expected size %d, got %d", len(payload), stored.Size)
	}
	if !strings.HasPrefix(stored.RelPath, "suppliers/ZSU0026419/parts/PN-1/drawings/") {
		t.Errorf("Unexpected rel path %s", stored.RelPath)
	}
	if !strings.HasSuffix(stored.StoredName, ".pdf") {
		t.Errorf("Expected a .pdf stored name, got %s", stored.StoredName)
	}

	read, err := store.Read(stored.RelPath)
	if err != nil {
		t.Fatalf("Failed to read upload back: %v", err)
	}
	if !bytes.Equal(read, payload) {
		t.Error("Read payload differs from the saved payload")
	}
}

// TestSaveMIMEFallback tests the extension fallback from the declared MIME type
func TestSaveMIMEFallback(t *testing.T) {
	store := setupTestStore(t)

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{"tr_docs", "TR-100"},
		OriginalName: "report",
		DeclaredMIME: "application/pdf",
		Payload:      []byte("pdf bytes"),
		Allowed:      attachment.GeneralDocExtensions,
	})
	if err != nil {
		t.Fatalf("Failed to save upload: %v", err)
	}
	if !strings.HasSuffix(stored.StoredName, ".pdf") {
		t.Errorf("Expected a .pdf stored name, got %s", stored.StoredName)
	}
}

// TestSaveRejectsUnresolvableExtension tests that nothing is written when
// neither the filename nor the MIME type yields an extension
func TestSaveRejectsUnresolvableExtension(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Save(attachment.Upload{
		Dir:          []string{"tr_docs", "TR-100"},
		OriginalName: "mystery",
		DeclaredMIME: "application/x-unknown",
		Payload:      []byte("data"),
		Allowed:      attachment.GeneralDocExtensions,
	})
	if err == nil {
		t.Fatal("Expected an error for an unresolvable extension")
	}

	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeValidation {
		t.Errorf("Expected a validation error, got %v", err)
	}

	// The rejection happens before any disk write
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("Failed to read upload root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected an empty upload root, found %d entries", len(entries))
	}
}

// TestSaveRejectsDisallowedExtension tests the per-module extension policy
func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Save(attachment.Upload{
		Dir:          []string{"audit_reports", "AUD-2026-001"},
		OriginalName: "notes.txt",
		Payload:      []byte("text"),
		Allowed:      attachment.AuditReportExtensions,
	})
	if err == nil {
		t.Fatal("Expected an error for a disallowed extension")
	}

	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeValidation {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

// TestSaveRejectsOversizedPayload tests the maximum upload size limit
func TestSaveRejectsOversizedPayload(t *testing.T) {
	cfg := &config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 16,
	}
	store := attachment.NewStore(cfg)

	_, err := store.Save(attachment.Upload{
		Dir:          []string{"tr_docs", "TR-1"},
		OriginalName: "big.pdf",
		Payload:      bytes.Repeat([]byte("x"), 17),
		Allowed:      attachment.GeneralDocExtensions,
	})
	if err == nil {
		t.Fatal("Expected an error for an oversized payload")
	}
}

// TestResolveRejectsEscapingPath tests the upload root escape guard
func TestResolveRejectsEscapingPath(t *testing.T) {
	store := setupTestStore(t)

	for _, rel := range []string{"../outside.txt", "a/../../outside.txt"} {
		_, err := store.Resolve(rel)
		if err == nil {
			t.Errorf("Expected an error resolving %q", rel)
			continue
		}
		var ce *types.CustomError
		if !errors.As(err, &ce) || ce.Type != types.ErrTypeBadPath {
			t.Errorf("Expected a bad_path error for %q, got %v", rel, err)
		}
	}
}

// TestReadMissingFile tests that a vanished physical file reports not-found
func TestReadMissingFile(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Read("tr_docs/TR-1/gone.pdf")
	if err == nil {
		t.Fatal("Expected an error reading a missing file")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeNotFound {
		t.Errorf("Expected a not_found error, got %v", err)
	}
}

// TestRemove tests best-effort physical deletion
func TestRemove(t *testing.T) {
	store := setupTestStore(t)

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{"tr_docs", "TR-1"},
		OriginalName: "doc.pdf",
		Payload:      []byte("data"),
		Allowed:      attachment.GeneralDocExtensions,
	})
	if err != nil {
		t.Fatalf("Failed to save upload: %v", err)
	}

	store.Remove(stored.RelPath)

	abs := filepath.Join(store.Root(), filepath.FromSlash(stored.RelPath))
	if _, err := os.Stat(abs); !os.IsNotExist(err) {
		t.Error("Expected the file to be removed")
	}

	// Removing again is a no-op
	store.Remove(stored.RelPath)
}

// TestSanitizeSegment tests owner identifier sanitization
func TestSanitizeSegment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"TR-100", "TR-100"},
		{"part no 7", "part_no_7"},
		{"a/b\\c", "abc"},
		{"..secret", "secret"},
		{"///", "unnamed"},
		{"", "unnamed"},
	}
	for _, c := range cases {
		if got := attachment.SanitizeSegment(c.in); got != c.want {
			t.Errorf("SanitizeSegment(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
