package gormstore

import (
	"context"
	"time"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"gorm.io/gorm"
)

const (
	errorOperationStore = "store"
	errorSubjectSchema  = "schema"
	errorSubjectTicket  = "ticket"
	errorCodeCount      = "count"
	errorCodeInsert     = "insert"
	errorCodeInvalid    = "invalid"
	errorCodeList       = "list"
	errorCodeMigrate    = "migrate"
	errorCodeUpdate     = "update"

	columnToken    = "token"
	columnFilename = "filename"
)

// Store implements ticketing.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the tickets table when it is missing.
func (store *Store) InitSchema(ctx context.Context) error {
	if err := store.db.WithContext(ctx).AutoMigrate(&Ticket{}); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore ticketing.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) InsertPlaceholder(ctx context.Context, input ticketing.TicketInput, createdAt time.Time) (ticketing.TicketID, error) {
	model := Ticket{
		CreatedAt: createdAt,
		CarType:   input.VehicleType.String(),
		Brand:     input.Brand,
		Plate:     input.Plate,
	}
	return store.insert(ctx, &model)
}

func (store *Store) InsertComplete(ctx context.Context, token ticketing.Token, input ticketing.TicketInput, filename string, createdAt time.Time) (ticketing.TicketID, error) {
	if token.IsZero() {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrInvalidToken)
	}
	if filename == "" {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrEmptyFilename)
	}
	model := Ticket{
		Token:     token.String(),
		CreatedAt: createdAt,
		CarType:   input.VehicleType.String(),
		Brand:     input.Brand,
		Plate:     input.Plate,
		Filename:  filename,
	}
	return store.insert(ctx, &model)
}

func (store *Store) insert(ctx context.Context, model *Ticket) (ticketing.TicketID, error) {
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if err := store.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInsert, err)
	}
	ticketID, err := ticketing.NewTicketID(model.ID)
	if err != nil {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInvalid, err)
	}
	return ticketID, nil
}

func (store *Store) UpdateTokenAndFile(ctx context.Context, ticketID ticketing.TicketID, token ticketing.Token, filename string) error {
	if token.IsZero() {
		return wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrInvalidToken)
	}
	if filename == "" {
		return wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrEmptyFilename)
	}
	result := store.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ?", ticketID.Int64()).
		Updates(map[string]interface{}{
			columnToken:    token.String(),
			columnFilename: filename,
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectTicket, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectTicket, errorCodeUpdate, ticketing.ErrUnknownTicket)
	}
	return nil
}

func (store *Store) ListTickets(ctx context.Context) ([]ticketing.Ticket, error) {
	var rows []Ticket
	if err := store.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectTicket, errorCodeList, err)
	}
	tickets := make([]ticketing.Ticket, 0, len(rows))
	for _, row := range rows {
		ticket, err := mapTicket(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectTicket, errorCodeInvalid, err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// Count returns the number of stored tickets.
func (store *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := store.db.WithContext(ctx).Model(&Ticket{}).Count(&count).Error; err != nil {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeCount, err)
	}
	return count, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return ticketing.WrapError(errorOperationStore, subject, code, err)
}

func mapTicket(row Ticket) (ticketing.Ticket, error) {
	ticketID, err := ticketing.NewTicketID(row.ID)
	if err != nil {
		return ticketing.Ticket{}, err
	}
	var token ticketing.Token
	if row.Token != "" {
		token, err = ticketing.NewToken(row.Token)
		if err != nil {
			return ticketing.Ticket{}, err
		}
	}
	return ticketing.Ticket{
		ID:          ticketID,
		Token:       token,
		CreatedAt:   row.CreatedAt,
		VehicleType: ticketing.VehicleType(row.CarType),
		Brand:       row.Brand,
		Plate:       row.Plate,
		Filename:    row.Filename,
	}, nil
}
