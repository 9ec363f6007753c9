package constant

// Label domain error codes
const (
	// Label service - Validation errors (0xx)
	ErrCodeEmptyBase         = "LBL001"
	ErrCodeInvalidSplitCount = "LBL002"
	ErrCodeInvalidLayout     = "LBL003"

	// Label service - Pipeline errors (1xx)
	ErrCodeRenderFailure   = "LBL101"
	ErrCodeComposeFailure  = "LBL102"
	ErrCodeAssembleFailure = "LBL103"
	ErrCodeExportFailure   = "LBL104"

	// Label service - History errors (2xx)
	ErrCodeRecordRun = "LBL201"
	ErrCodeListRuns  = "LBL202"
)

// QR code error codes
const (
	ErrCodeQREncode   = "QR001"
	ErrCodeQRNotFound = "QR002"
	ErrCodeQRBitmap   = "QR003"
	ErrCodeQRImage    = "QR004"
)

// Font error codes
const (
	ErrCodeFontStrategy = "FNT001"
	ErrCodeFontFace     = "FNT002"
)

// PDF error codes
const (
	ErrCodePDFEmpty = "PDF001"
	ErrCodePDFImage = "PDF002"
	ErrCodePDFWrite = "PDF003"
)

// Database error codes
const (
	// General DB errors (5xx)
	ErrCodeDBGeneral = "DB500"

	// Connection errors (0xx)
	ErrCodeDBOpen    = "DB001"
	ErrCodeDBMigrate = "DB002"

	// Record operation errors (1xx)
	ErrCodeDBInsert = "DB101"

	// ListRecent operation errors (2xx)
	ErrCodeDBLookup = "DB201"

	// Close operation errors (4xx)
	ErrCodeDBClose = "DB401"
)

// Error types for categorization
const (
	// Domain error types
	ErrTypeValidation = "validation"
	ErrTypeRender     = "render"
	ErrTypeDecode     = "decode"
	ErrTypeExport     = "export"
	ErrTypeHistory    = "history"

	// Infrastructure error types
	ErrTypeDB   = "db"
	ErrTypeFont = "font"
)
