package ticketing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates the ticket-producing actions over a Store, a Renderer
// and an optional legacy Mirror.
type Service struct {
	store    Store
	renderer Renderer
	nowFn    func() time.Time
	mirror   Mirror
	tokens   TokenGenerator
	catalog  VehicleCatalog
	logger   OperationLogger
	newRunID func() string
}

// NewService wires a Service.
func NewService(store Store, renderer Renderer, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if renderer == nil {
		return nil, fmt.Errorf("%w: renderer dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	catalog, err := NewVehicleCatalog(DefaultVehicleTypes)
	if err != nil {
		return nil, err
	}
	service := &Service{
		store:    store,
		renderer: renderer,
		nowFn:    now,
		mirror:   disabledMirror{},
		tokens:   TokenGenerator{prefix: DefaultTokenPrefix},
		catalog:  catalog,
		newRunID: uuid.NewString,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// VehicleTypes lists the selectable vehicle types.
func (service *Service) VehicleTypes() []VehicleType {
	return service.catalog.Types()
}

// GenerateTicket stores a pending row, derives the token from its id, renders
// the image, completes the row and attempts the legacy mirror.
func (service *Service) GenerateTicket(ctx context.Context, input TicketInput) (Result, error) {
	logEntry := OperationLog{Operation: operationGenerateTicket, RunID: service.newRunID()}
	result, err := service.generateTicket(ctx, input, &logEntry)
	logEntry.Error = err
	service.logOperation(ctx, logEntry)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (service *Service) generateTicket(ctx context.Context, input TicketInput, logEntry *OperationLog) (Result, error) {
	vehicleType, err := service.catalog.Resolve(input.VehicleType.String())
	if err != nil {
		return Result{}, err
	}
	input.VehicleType = vehicleType
	createdAt := service.nowFn()

	var ticketID TicketID
	err = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		insertedID, insertErr := transactionStore.InsertPlaceholder(ctx, input, createdAt)
		if insertErr != nil {
			return insertErr
		}
		ticketID = insertedID
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	logEntry.TicketID = ticketID

	token := service.tokens.FromID(ticketID)
	logEntry.Token = token
	imagePath, err := service.renderer.Render(ctx, RenderRequest{
		Token:       token,
		VehicleType: input.VehicleType,
		Brand:       input.Brand,
		Plate:       input.Plate,
		GeneratedAt: service.nowFn(),
	})
	if err != nil {
		return Result{}, WrapError(errorOperationService, errorSubjectTicket, errorCodeRender, err)
	}
	logEntry.ImagePath = imagePath

	err = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		return transactionStore.UpdateTokenAndFile(ctx, ticketID, token, imagePath)
	})
	if err != nil {
		return Result{}, err
	}

	ticket := Ticket{
		ID:          ticketID,
		Token:       token,
		CreatedAt:   createdAt,
		VehicleType: input.VehicleType,
		Brand:       input.Brand,
		Plate:       input.Plate,
		Filename:    imagePath,
	}
	mirrorResult := service.mirrorTicket(ctx, ticket)
	logEntry.Mirror = mirrorResult
	return Result{Ticket: ticket, ImagePath: imagePath, Mirror: mirrorResult}, nil
}

// GenerateMaster renders and stores a ticket carrying the shared MASTER token.
// Blank fields are recorded as N/A.
func (service *Service) GenerateMaster(ctx context.Context, input TicketInput) (Result, error) {
	logEntry := OperationLog{Operation: operationGenerateMaster, RunID: service.newRunID(), Token: MasterToken()}
	result, err := service.generateMaster(ctx, input, &logEntry)
	logEntry.Error = err
	service.logOperation(ctx, logEntry)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (service *Service) generateMaster(ctx context.Context, input TicketInput, logEntry *OperationLog) (Result, error) {
	input = input.withPlaceholders()
	token := MasterToken()
	imagePath, err := service.renderer.Render(ctx, RenderRequest{
		Token:       token,
		VehicleType: input.VehicleType,
		Brand:       input.Brand,
		Plate:       input.Plate,
		GeneratedAt: service.nowFn(),
	})
	if err != nil {
		return Result{}, WrapError(errorOperationService, errorSubjectMaster, errorCodeRender, err)
	}
	logEntry.ImagePath = imagePath

	createdAt := service.nowFn()
	var ticketID TicketID
	err = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		insertedID, insertErr := transactionStore.InsertComplete(ctx, token, input, imagePath, createdAt)
		if insertErr != nil {
			return insertErr
		}
		ticketID = insertedID
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	logEntry.TicketID = ticketID

	ticket := Ticket{
		ID:          ticketID,
		Token:       token,
		CreatedAt:   createdAt,
		VehicleType: input.VehicleType,
		Brand:       input.Brand,
		Plate:       input.Plate,
		Filename:    imagePath,
	}
	mirrorResult := service.mirrorTicket(ctx, ticket)
	logEntry.Mirror = mirrorResult
	return Result{Ticket: ticket, ImagePath: imagePath, Mirror: mirrorResult}, nil
}

func (service *Service) mirrorTicket(ctx context.Context, ticket Ticket) MirrorResult {
	return service.mirror.Mirror(ctx, MirrorRecord{
		Token:       ticket.Token,
		VehicleType: ticket.VehicleType,
		Brand:       ticket.Brand,
		Plate:       ticket.Plate,
		CreatedAt:   service.nowFn(),
		Filename:    ticket.Filename,
	})
}

// Export writes every stored ticket as CSV, ordered by id, and returns the
// number of data rows written.
func (service *Service) Export(ctx context.Context, writer io.Writer) (int, error) {
	logEntry := OperationLog{Operation: operationExport, RunID: service.newRunID()}
	rows, err := service.export(ctx, writer)
	logEntry.Rows = rows
	logEntry.Error = err
	service.logOperation(ctx, logEntry)
	return rows, err
}

func (service *Service) export(ctx context.Context, writer io.Writer) (int, error) {
	var tickets []Ticket
	err := service.store.WithTx(ctx, func(ctx context.Context, txStore Store) error {
		var listErr error
		tickets, listErr = txStore.ListTickets(ctx)
		return listErr
	})
	if err != nil {
		return 0, err
	}
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(ExportHeader); err != nil {
		return 0, WrapError(errorOperationService, errorSubjectExport, errorCodeWrite, err)
	}
	for _, ticket := range tickets {
		if err := csvWriter.Write(exportRow(ticket)); err != nil {
			return 0, WrapError(errorOperationService, errorSubjectExport, errorCodeWrite, err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return 0, WrapError(errorOperationService, errorSubjectExport, errorCodeWrite, err)
	}
	return len(tickets), nil
}

func exportRow(ticket Ticket) []string {
	return []string{
		strconv.FormatInt(ticket.ID.Int64(), 10),
		ticket.Token.String(),
		ticket.CreatedAt.Format(TimestampLayout),
		ticket.VehicleType.String(),
		ticket.Brand,
		ticket.Plate,
		ticket.Filename,
	}
}
