package api

const (
	// DefaultFilePermissions for temp directory creation
	DefaultFilePermissions = 0755

	// MaxErrorMessageLength truncates error details returned to clients
	MaxErrorMessageLength = 200

	// StampedSuffix is appended to the original filename of stamped documents
	StampedSuffix = "stamped"
)

// Multipart form field names
const (
	FieldPDF              = "pdf"
	FieldLogo             = "logo"
	FieldSize             = "size"
	FieldPadding          = "padding"
	FieldApplyToAll       = "applyToAll"
	FieldPosition         = "position"
	FieldPageConfigs      = "pageConfigs"
	FieldPages            = "pages"
	FieldRemoveBackground = "removeBackground"
)
