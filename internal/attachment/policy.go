package attachment

// Module folder names under the upload root. Recorded relative paths always
// start with one of these.
const (
	FolderTRDocs       = "tr_docs"
	FolderTripDocs     = "trip_docs"
	FolderAuditReports = "audit_reports"
	FolderTaskDocs     = "task_docs"
	FolderFileLibrary  = "file_library"
	FolderSuppliers    = "suppliers"
)

// GeneralDocExtensions is the default upload policy for office, image and
// archive formats (TR, trip and task documents).
var GeneralDocExtensions = NewExtensionSet(
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"jpg", "jpeg", "png", "zip", "rar",
)

// LibraryExtensions additionally allows plain text files.
var LibraryExtensions = NewExtensionSet(
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"txt", "jpg", "jpeg", "png", "zip", "rar",
)

// DrawingExtensions allows CAD formats on top of documents and images.
var DrawingExtensions = NewExtensionSet(
	"pdf", "png", "jpg", "jpeg", "webp", "dwg", "dxf", "step", "stp",
)

// AuditReportExtensions restricts audit uploads to spreadsheets and PDF.
var AuditReportExtensions = NewExtensionSet("xlsx", "xls", "xlsm", "pdf")

// ExtensionSet is one module's allowed-extension policy (lowercase, no dot).
type ExtensionSet map[string]struct{}

// NewExtensionSet builds an ExtensionSet from extension literals.
func NewExtensionSet(exts ...string) ExtensionSet {
	s := make(ExtensionSet, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// Contains reports whether ext belongs to the set.
func (s ExtensionSet) Contains(ext string) bool {
	_, ok := s[ext]
	return ok
}

// List returns the allowed extensions in unspecified order, for error messages.
func (s ExtensionSet) List() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	return out
}

// mimeExtensions maps a declared MIME type to a file extension when the
// original filename carries none. Uploads resolving through neither route are
// rejected: the stored name needs a stable suffix for content-type serving.
var mimeExtensions = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.ms-excel": "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"application/vnd.ms-excel.sheet.macroenabled.12":                    "xlsm",
	"application/vnd.ms-powerpoint":                                     "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"text/plain":                   "txt",
	"image/jpeg":                   "jpg",
	"image/png":                    "png",
	"image/webp":                   "webp",
	"application/zip":              "zip",
	"application/x-zip-compressed": "zip",
	"application/vnd.rar":          "rar",
	"application/x-rar-compressed": "rar",
}
