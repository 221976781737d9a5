package ticketing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TicketID is the sequential identifier assigned by the primary store.
type TicketID int64

// NewTicketID validates that raw is a positive identifier.
func NewTicketID(raw int64) (TicketID, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidTicketID)
	}
	return TicketID(raw), nil
}

// Int64 exposes the raw value.
func (id TicketID) Int64() int64 {
	return int64(id)
}

// Token is the value encoded in the barcode and stored with each ticket.
type Token struct {
	value string
}

// NewToken validates and normalizes a token.
func NewToken(raw string) (Token, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Token{}, fmt.Errorf("%w: empty value", ErrInvalidToken)
	}
	return Token{value: trimmed}, nil
}

// MasterToken returns the literal token shared by master tickets.
func MasterToken() Token {
	return Token{value: MasterTokenValue}
}

// String returns the normalized token.
func (token Token) String() string {
	return token.value
}

// IsZero reports whether the token is unassigned.
func (token Token) IsZero() bool {
	return token.value == ""
}

// IsMaster reports whether the token is the shared master literal.
func (token Token) IsMaster() bool {
	return token.value == MasterTokenValue
}

// VehicleType is one of the catalog entries offered at the kiosk.
type VehicleType string

// String returns the display value.
func (vehicleType VehicleType) String() string {
	return string(vehicleType)
}

// VehicleCatalog lists the vehicle types an operator may select.
type VehicleCatalog struct {
	types []VehicleType
}

// NewVehicleCatalog validates and normalizes the configured vehicle types.
func NewVehicleCatalog(raw []string) (VehicleCatalog, error) {
	types := make([]VehicleType, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		types = append(types, VehicleType(trimmed))
	}
	if len(types) == 0 {
		return VehicleCatalog{}, fmt.Errorf("%w: vehicle catalog is empty", ErrInvalidServiceConfig)
	}
	return VehicleCatalog{types: types}, nil
}

// Types returns a copy of the catalog entries in configured order.
func (catalog VehicleCatalog) Types() []VehicleType {
	return append([]VehicleType(nil), catalog.types...)
}

// Resolve matches raw against the catalog case-insensitively and returns the
// catalog spelling.
func (catalog VehicleCatalog) Resolve(raw string) (VehicleType, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrMissingVehicleType
	}
	for _, vehicleType := range catalog.types {
		if strings.EqualFold(vehicleType.String(), trimmed) {
			return vehicleType, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, trimmed)
}

// TicketInput carries the operator-entered fields.
type TicketInput struct {
	VehicleType VehicleType
	Brand       string
	Plate       string
}

// NewTicketInput trims the operator fields.
func NewTicketInput(vehicleType string, brand string, plate string) TicketInput {
	return TicketInput{
		VehicleType: VehicleType(strings.TrimSpace(vehicleType)),
		Brand:       strings.TrimSpace(brand),
		Plate:       strings.TrimSpace(plate),
	}
}

// withPlaceholders substitutes PlaceholderValue for blank fields.
func (input TicketInput) withPlaceholders() TicketInput {
	return TicketInput{
		VehicleType: VehicleType(placeholderIfBlank(input.VehicleType.String())),
		Brand:       placeholderIfBlank(input.Brand),
		Plate:       placeholderIfBlank(input.Plate),
	}
}

func placeholderIfBlank(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PlaceholderValue
	}
	return trimmed
}

// Ticket is a stored ticket record.
type Ticket struct {
	ID          TicketID
	Token       Token
	CreatedAt   time.Time
	VehicleType VehicleType
	Brand       string
	Plate       string
	Filename    string
}

// IsPending reports whether the ticket still waits for its token and image.
func (ticket Ticket) IsPending() bool {
	return ticket.Token.IsZero() && ticket.Filename == ""
}

// RenderRequest describes a ticket image to produce.
type RenderRequest struct {
	Token       Token
	VehicleType VehicleType
	Brand       string
	Plate       string
	GeneratedAt time.Time
}

// MirrorRecord is the row written to the legacy store.
type MirrorRecord struct {
	Token       Token
	VehicleType VehicleType
	Brand       string
	Plate       string
	CreatedAt   time.Time
	Filename    string
}

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	InsertPlaceholder(ctx context.Context, input TicketInput, createdAt time.Time) (TicketID, error)
	UpdateTokenAndFile(ctx context.Context, ticketID TicketID, token Token, filename string) error
	InsertComplete(ctx context.Context, token Token, input TicketInput, filename string, createdAt time.Time) (TicketID, error)
	ListTickets(ctx context.Context) ([]Ticket, error)
}

// Renderer produces the ticket image and returns its path.
type Renderer interface {
	Render(ctx context.Context, request RenderRequest) (string, error)
}

// Mirror performs the best-effort legacy write. Implementations never return
// errors; every failure is described by the MirrorResult.
type Mirror interface {
	Mirror(ctx context.Context, record MirrorRecord) MirrorResult
}

// Result is the outcome of a ticket-producing action.
type Result struct {
	Ticket    Ticket
	ImagePath string
	Mirror    MirrorResult
}

// StatusMessage returns the operator-facing status line.
func (result Result) StatusMessage() string {
	if result.Ticket.Token.IsMaster() {
		if result.Mirror.Mirrored() {
			return "MASTER generated and saved to legacy store"
		}
		return fmt.Sprintf("MASTER generated. Legacy store: %s", result.Mirror.Reason())
	}
	if result.Mirror.Mirrored() {
		return fmt.Sprintf("Ticket generated and saved to legacy store: %s", result.Ticket.Token.String())
	}
	return fmt.Sprintf("Ticket generated (primary store). Legacy store: %s", result.Mirror.Reason())
}
