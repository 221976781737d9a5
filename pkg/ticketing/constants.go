package ticketing

const (
	operationGenerateTicket = "generate_ticket"
	operationGenerateMaster = "generate_master"
	operationExport         = "export"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	errorOperationService = "service"
	errorSubjectTicket    = "ticket"
	errorSubjectMaster    = "master"
	errorSubjectExport    = "export"
	errorCodeRender       = "render"
	errorCodeWrite        = "write"

	// DefaultTokenPrefix is prepended to every sequential token.
	DefaultTokenPrefix = "TEG-"
	// MasterTokenValue is shared by every master ticket.
	MasterTokenValue = "MASTER"
	// PlaceholderValue replaces blank master ticket fields.
	PlaceholderValue = "N/A"
	// TimestampLayout formats creation and render times.
	TimestampLayout = "2006-01-02 15:04:05"

	tokenDigits = 6
)

// ExportHeader lists the CSV columns written by Export.
var ExportHeader = []string{"id", "token", "created_at", "car_type", "brand", "plate", "filename"}

// DefaultVehicleTypes is the catalog offered at the kiosk.
var DefaultVehicleTypes = []string{"Car", "Truck", "Motorcycle", "Other"}
