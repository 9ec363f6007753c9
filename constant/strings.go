package constant

// ContextKey is the type of request context keys set by this service
type ContextKey string

// Request context keys
const (
	RequestIDKey ContextKey = "request_id"
)

// HTTP header names
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderRunID              = "X-Run-ID"
	HeaderLabelCount         = "X-Label-Count"
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
)

// Content types
const (
	ContentTypeJSON = "application/json"
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
)

// Function/Context names
const (
	// Domain context names
	CtxDomain            = "domain"
	CtxCompose           = "Compose"
	CtxGenerate          = "Generate"
	CtxGenerateFromImage = "GenerateFromImage"
	CtxDecode            = "Decode"
	CtxPreview           = "Preview"
	CtxListRuns          = "ListRuns"

	// Infrastructure context names
	CtxDB         = "db"
	CtxRecord     = "Record"
	CtxListRecent = "ListRecent"
	CtxClose      = "Close"
	CtxQRCode     = "qrcode"
	CtxFonts      = "fonts"
	CtxPDF        = "pdf"
	CtxAPI        = "api"

	// General context names
	CtxRouter          = "Router"
	CtxMain            = "Main"
	CtxCreateLabels    = "CreateLabels"
	CtxUploadLabels    = "UploadLabels"
	CtxDecodeUpload    = "DecodeUpload"
	CtxListRunsHandler = "ListRunsHandler"
	CtxQRCodeHandler   = "QRCodeHandler"
)

// Data field keys
const (
	// Service data fields
	DataService   = "service"
	DataBase      = "base"
	DataCount     = "count"
	DataPayload   = "payload"
	DataLayout    = "layout"
	DataPages     = "pages"
	DataBytes     = "bytes"
	DataRunID     = "run_id"
	DataFontSize  = "font_size"
	DataOverflow  = "overflow"
	DataWidth     = "width"
	DataHeight    = "height"
	DataCacheHit  = "cache_hit"
	DataSource    = "source"
	DataEngine    = "engine"
	DataStrategy  = "strategy"
	DataLimit     = "limit"
	DataFormat    = "format"
	DataDecoded   = "decoded"
	DataCreatedAt = "created_at"

	// Database data fields
	DataPath         = "path"
	DataElapsed      = "elapsed"
	DataRows         = "rows"
	DataSQL          = "sql"
	DataData         = "data"
	DataRowsAffected = "rows_affected"

	// API data fields
	DataMethod      = "method"
	DataStatus      = "status"
	DataLatency     = "latency"
	DataSize        = "size"
	DataRemoteAddr  = "remote_addr"
	DataUserAgent   = "user_agent"
	DataPort        = "port"
	DataDBPath      = "db_path"
	DataEnvironment = "environment"
)

// Error message constants
const (
	ErrEmptyBase          = "base text cannot be empty"
	ErrInvalidSplitCount  = "split count must be at least 1"
	ErrSplitCountTooLarge = "split count exceeds the configured maximum"
	ErrInvalidLayout      = "unknown layout"
	ErrInvalidQRImage     = "QR image must be non-empty"
	ErrQRNotFound         = "Could not read a QR code from the uploaded image."
	ErrEmptyDocument      = "document has no pages"
)

// API response messages and limits
const (
	RespInvalidRequest   = "Invalid request format"
	RespImageRequired    = "An image file is required"
	RespUploadTooLarge   = "Uploaded file is too large"
	RespGenerateFailed   = "Failed to generate labels"
	RespListRunsFailed   = "Failed to list runs"
	RespQRCodeFailed     = "Failed to generate QR code"
	RespWriteFailed      = "Failed to write response"
	RespAuthRealm        = "qrlabel"
	DefaultQRCodeSize    = 256
	MinQRCodeSize        = 64
	MaxQRCodeSize        = 1024
	DefaultRunsListLimit = 20
)

// Error codes
const (
	ErrCodeAPIDecodeRequest  = "API001"
	ErrCodeAPIServiceError   = "API002"
	ErrCodeAPIUpload         = "API003"
	ErrCodeAPIWriteResponse  = "API004"
	ErrCodeAppDBInit         = "APP001"
	ErrCodeAppServerStart    = "APP002"
	ErrCodeAppServerShutdown = "APP003"
	ErrCodeAppConfig         = "APP004"
)

// Error types
const (
	ErrTypeDomain = "domain"
	ErrTypeAPI    = "api"
	ErrTypeApp    = "application"
)

// API routes
const (
	RouteCreateLabels = "/api/labels"
	RouteUploadLabels = "/api/labels/upload"
	RouteDecode       = "/api/decode"
	RouteRuns         = "/api/runs"
	RouteQRCode       = "/api/qrcode"
	RouteHealthcheck  = "/health"
)

// Form and query fields
const (
	FieldImage           = "image"
	FieldText            = "text"
	FieldCount           = "count"
	FieldLayout          = "layout"
	FieldQRWidthRatio    = "qr_width_ratio"
	FieldFontWidthRatio  = "font_width_ratio"
	FieldBorderThickness = "border_thickness"
	FieldVerticalSpacing = "vertical_spacing"
	FieldSize            = "size"
	QueryFormat          = "format"
	QueryLimit           = "limit"
	FormatPDF            = "pdf"
	FormatPNG            = "png"
)

// Download file names
const (
	FileNameLabelsPDF  = "qr_labels.pdf"
	FileNamePreviewPNG = "qr_label_preview.png"
)

// Log keys
const (
	LogTimeKey         = "time"
	LogLevelKey        = "level"
	LogNameKey         = "logger"
	LogCallerKey       = "caller"
	LogMessageKey      = "msg"
	LogStacktraceKey   = "stacktrace"
	LogRequestIDKey    = "request_id"
	LogFunctionKey     = "function"
	LogErrorCodeKey    = "error_code"
	LogErrorTypeKey    = "error_type"
	LogErrorMessageKey = "error_message"
	LogEncodingJSON    = "json"
	LogEncodingConsole = "console"
	LogOutputStdout    = "stdout"
	LogOutputStderr    = "stderr"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Message constants for application
const (
	MsgApplicationStarting   = "Application starting"
	MsgFailedToLoadConfig    = "Failed to load configuration"
	MsgFailedToInitDB        = "Failed to initialize database"
	MsgFailedToInitService   = "Failed to initialize label service"
	MsgHistoryDisabled       = "Run history disabled"
	MsgServerStarting        = "Server starting"
	MsgServerFailedToStart   = "Server failed to start"
	MsgServerShuttingDown    = "Server shutting down"
	MsgServerShutdownError   = "Error during server shutdown"
	MsgServerStopped         = "Server stopped"
	MsgRequestReceived       = "Request received"
	MsgRequestCompleted      = "Request completed"
	MsgHandlingCreateRequest = "Handling create labels request"
	MsgHandlingUploadRequest = "Handling upload labels request"
	MsgHandlingDecodeRequest = "Handling decode request"
	MsgHandlingRunsRequest   = "Handling list runs request"
	MsgHandlingQRCodeRequest = "Handling QR code request"
	MsgSettingUpRoutes       = "Setting up API routes"
	MsgHealthcheckRequest    = "Handling healthcheck request"
	MsgHealthy               = "Healthy"
)

// Cache namespaces
const (
	QRImageNamespace = "QR"
)

// QR engines
const (
	QREngineSkip2     = "skip2"
	QREngineBoombuler = "boombuler"
)
