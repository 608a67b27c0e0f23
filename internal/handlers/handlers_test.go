package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/config"
	"github.com/sqmworks/supplier-portal/internal/database"
	"github.com/sqmworks/supplier-portal/internal/handlers"
)

// setupTestApp wires an in-memory database and a temp-dir attachment store
// behind a Fiber app with the trouble report routes
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *attachment.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 10 * 1024 * 1024,
	}
	store := attachment.NewStore(cfg)

	app := fiber.New()
	h := &handlers.TroubleReportHandler{DB: db, Store: store}
	app.Get("/api/trouble-reports", h.ListTroubleReports)
	app.Post("/api/trouble-reports", h.CreateTroubleReport)
	app.Get("/api/trouble-reports/:id", h.GetTroubleReport)
	app.Put("/api/trouble-reports/:id", h.UpdateTroubleReport)
	app.Delete("/api/trouble-reports/:id", h.DeleteTroubleReport)
	app.Post("/api/trouble-reports/:id/documents", h.UploadTRDocument)
	app.Get("/api/trouble-reports/:id/documents/:docId/view", h.ViewTRDocument)
	app.Get("/api/trouble-reports/:id/documents/:docId/download", h.DownloadTRDocument)
	app.Delete("/api/trouble-reports/:id/documents/:docId", h.DeleteTRDocument)

	return app, db, store
}

// createTR posts a trouble report and returns its decoded body
func createTR(t *testing.T, app *fiber.App, trNo string) map[string]interface{} {
	body, _ := json.Marshal(map[string]string{
		"tr_no":             trNo,
		"supplier_name":     "NOCO",
		"issue_description": "Cracked housing",
	})
	req := httptest.NewRequest("POST", "/api/trouble-reports", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

// uploadDocument uploads a multipart file to a trouble report
func uploadDocument(t *testing.T, app *fiber.App, trID string, filename, docType string, payload []byte) map[string]interface{} {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := mw.WriteField("doc_type", docType); err != nil {
		t.Fatalf("Failed to write form field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/trouble-reports/"+trID+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

// jsonNumber formats a decoded JSON id for use in a URL
func jsonNumber(t *testing.T, v interface{}) string {
	n, ok := v.(float64)
	if !ok {
		t.Fatalf("Unexpected id type %T", v)
	}
	return strconv.FormatUint(uint64(n), 10)
}

// TestTroubleReportDocumentRoundTrip tests the full attach/download/delete cycle
func TestTroubleReportDocumentRoundTrip(t *testing.T) {
	app, _, store := setupTestApp(t)

	tr := createTR(t, app, "TR-100")
	trID := jsonNumber(t, tr["ID"])

	payload := bytes.Repeat([]byte("x"), 2048)
	doc := uploadDocument(t, app, trID, "report.pdf", "quality_report", payload)

	if doc["DocType"] != "quality_report" {
		t.Errorf("Expected doc type quality_report, got %v", doc["DocType"])
	}
	if doc["OriginalName"] != "report.pdf" {
		t.Errorf("Expected original name report.pdf, got %v", doc["OriginalName"])
	}
	if doc["Size"].(float64) != 2048 {
		t.Errorf("Expected size 2048, got %v", doc["Size"])
	}

	relPath := doc["RelPath"].(string)
	if !strings.HasPrefix(relPath, "tr_docs/TR-100/") || !strings.HasSuffix(relPath, ".pdf") {
		t.Errorf("Unexpected rel path %s", relPath)
	}

	// The physical file exists under the upload root with the recorded size
	abs := filepath.Join(store.Root(), filepath.FromSlash(relPath))
	info, err := os.Stat(abs)
	if err != nil {
		t.Fatalf("Failed to stat stored file: %v", err)
	}
	if info.Size() != 2048 {
		t.Errorf("Expected 2048 bytes on disk, got %d", info.Size())
	}

	docID := jsonNumber(t, doc["ID"])

	// Download is byte-identical with attachment disposition
	req := httptest.NewRequest("GET", "/api/trouble-reports/"+trID+"/documents/"+docID+"/download", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "report.pdf") {
		t.Errorf("Unexpected content disposition %q", cd)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Error("Downloaded body differs from the uploaded payload")
	}

	// View serves inline
	req = httptest.NewRequest("GET", "/api/trouble-reports/"+trID+"/documents/"+docID+"/view", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "inline") {
		t.Errorf("Expected inline disposition, got %q", cd)
	}

	// Delete, then the document routes 404
	req = httptest.NewRequest("DELETE", "/api/trouble-reports/"+trID+"/documents/"+docID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/trouble-reports/"+trID+"/documents/"+docID+"/download", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 after delete, got %d", resp.StatusCode)
	}
}

// TestDocumentOwnershipIsolation tests that a document is unreachable through
// another trouble report
func TestDocumentOwnershipIsolation(t *testing.T) {
	app, _, _ := setupTestApp(t)

	tr1 := createTR(t, app, "TR-1")
	tr2 := createTR(t, app, "TR-2")
	tr1ID := jsonNumber(t, tr1["ID"])
	tr2ID := jsonNumber(t, tr2["ID"])

	doc := uploadDocument(t, app, tr1ID, "evidence.pdf", "evidence", []byte("pdf"))
	docID := jsonNumber(t, doc["ID"])

	req := httptest.NewRequest("GET", "/api/trouble-reports/"+tr2ID+"/documents/"+docID+"/download", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 through the wrong report, got %d", resp.StatusCode)
	}
}

// TestCreateTroubleReportConflict tests the duplicate number response
func TestCreateTroubleReportConflict(t *testing.T) {
	app, _, _ := setupTestApp(t)

	createTR(t, app, "TR-100")

	body, _ := json.Marshal(map[string]string{
		"tr_no":             "TR-100",
		"supplier_name":     "NOCO",
		"issue_description": "Duplicate",
	})
	req := httptest.NewRequest("POST", "/api/trouble-reports", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["type"] != "conflict" {
		t.Errorf("Expected error type conflict, got %v", result["type"])
	}
	if result["ok"] != false {
		t.Error("Expected ok=false in the error envelope")
	}
}

// TestGetMissingTroubleReport tests the not-found envelope
func TestGetMissingTroubleReport(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/trouble-reports/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
