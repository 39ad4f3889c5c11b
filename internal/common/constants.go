package common

const (
	// Processing constants
	MaxConcurrencyLimit      = 8
	DefaultProgressPercent   = 20.0
	CompletedProgressPercent = 100.0

	// File operation constants
	DefaultFilePermissions = 0755
	OutputFilePermissions  = 0644

	// Event names
	EventConversionProgress  = "conversion:progress"
	EventConversionAttempt   = "conversion:attempt"
	EventConversionCompleted = "conversion:completed"
	EventStatsUpdate         = "stats:update"

	// Workflow names
	WorkflowImage      = "image"
	WorkflowPDF        = "pdf"
	WorkflowImageToPDF = "image_to_pdf"
)
