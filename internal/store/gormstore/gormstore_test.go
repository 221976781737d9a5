package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var createdAtValue = time.Date(2026, time.October, 16, 8, 15, 0, 0, time.UTC)

func newSQLiteStore(test *testing.T) *Store {
	test.Helper()
	databasePath := filepath.Join(test.TempDir(), "teg.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		test.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		test.Fatalf("sql db: %v", err)
	}
	test.Cleanup(func() { _ = sqlDB.Close() })
	store := New(db)
	if err := store.InitSchema(context.Background()); err != nil {
		test.Fatalf("init schema: %v", err)
	}
	return store
}

func mustToken(test *testing.T, raw string) ticketing.Token {
	test.Helper()
	token, err := ticketing.NewToken(raw)
	if err != nil {
		test.Fatalf("token: %v", err)
	}
	return token
}

func TestInitSchemaIsIdempotent(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	if err := store.InitSchema(context.Background()); err != nil {
		test.Fatalf("second init: %v", err)
	}
	if !store.db.Migrator().HasTable(&Ticket{}) {
		test.Fatalf("expected tickets table")
	}
	for _, column := range []string{"id", "token", "created_at", "car_type", "brand", "plate", "filename"} {
		if !store.db.Migrator().HasColumn(&Ticket{}, column) {
			test.Fatalf("expected column %q", column)
		}
	}
}

func TestPlaceholderThenUpdate(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	ctx := context.Background()
	input := ticketing.NewTicketInput("Car", "Toyota", "ABC123")

	ticketID, err := store.InsertPlaceholder(ctx, input, createdAtValue)
	if err != nil {
		test.Fatalf("insert placeholder: %v", err)
	}
	if ticketID != 1 {
		test.Fatalf("expected first id 1, got %d", ticketID)
	}
	tickets, err := store.ListTickets(ctx)
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 || !tickets[0].IsPending() {
		test.Fatalf("expected one pending ticket, got %+v", tickets)
	}

	token := mustToken(test, "TEG-000001")
	filename := filepath.Join("barcodes", "TEG-000001.png")
	if err := store.UpdateTokenAndFile(ctx, ticketID, token, filename); err != nil {
		test.Fatalf("update: %v", err)
	}
	tickets, err = store.ListTickets(ctx)
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	got := tickets[0]
	if got.Token != token || got.Filename != filename || got.VehicleType != "Car" || got.Brand != "Toyota" || got.Plate != "ABC123" {
		test.Fatalf("unexpected ticket %+v", got)
	}
	if !got.CreatedAt.Equal(createdAtValue) {
		test.Fatalf("expected created_at %v, got %v", createdAtValue, got.CreatedAt)
	}
}

func TestUpdateTokenAndFileErrors(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	ctx := context.Background()
	token := mustToken(test, "TEG-000009")

	err := store.UpdateTokenAndFile(ctx, ticketing.TicketID(9), token, "barcodes/TEG-000009.png")
	if !errors.Is(err, ticketing.ErrUnknownTicket) {
		test.Fatalf("expected ErrUnknownTicket, got %v", err)
	}
	var operationError ticketing.OperationError
	if !errors.As(err, &operationError) || operationError.Operation() != errorOperationStore || operationError.Code() != errorCodeUpdate {
		test.Fatalf("unexpected operation error %v", err)
	}
	if err := store.UpdateTokenAndFile(ctx, ticketing.TicketID(1), ticketing.Token{}, "x.png"); !errors.Is(err, ticketing.ErrInvalidToken) {
		test.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := store.UpdateTokenAndFile(ctx, ticketing.TicketID(1), token, ""); !errors.Is(err, ticketing.ErrEmptyFilename) {
		test.Fatalf("expected ErrEmptyFilename, got %v", err)
	}
}

func TestInsertCompleteAllowsDuplicateMasterTokens(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	ctx := context.Background()
	input := ticketing.NewTicketInput("N/A", "N/A", "N/A")
	for index := 0; index < 2; index++ {
		if _, err := store.InsertComplete(ctx, ticketing.MasterToken(), input, "barcodes/MASTER.png", createdAtValue); err != nil {
			test.Fatalf("insert master %d: %v", index, err)
		}
	}
	placeholderID, err := store.InsertPlaceholder(ctx, ticketing.NewTicketInput("Truck", "", ""), createdAtValue)
	if err != nil {
		test.Fatalf("insert placeholder: %v", err)
	}
	if placeholderID != 3 {
		test.Fatalf("expected id 3 after two masters, got %d", placeholderID)
	}
	count, err := store.Count(ctx)
	if err != nil {
		test.Fatalf("count: %v", err)
	}
	if count != 3 {
		test.Fatalf("expected 3 rows, got %d", count)
	}
}

func TestListTicketsOrderedByID(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	ctx := context.Background()
	for index := 0; index < 4; index++ {
		if _, err := store.InsertPlaceholder(ctx, ticketing.NewTicketInput("Car", "", ""), createdAtValue.Add(-time.Duration(index)*time.Hour)); err != nil {
			test.Fatalf("insert %d: %v", index, err)
		}
	}
	tickets, err := store.ListTickets(ctx)
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	for index, ticket := range tickets {
		if ticket.ID.Int64() != int64(index+1) {
			test.Fatalf("expected id %d at position %d, got %d", index+1, index, ticket.ID)
		}
	}
}

func TestWithTxRollsBackOnError(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	ctx := context.Background()
	failure := errors.New("render failed")
	err := store.WithTx(ctx, func(ctx context.Context, txStore ticketing.Store) error {
		if _, err := txStore.InsertPlaceholder(ctx, ticketing.NewTicketInput("Car", "", ""), createdAtValue); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		test.Fatalf("expected %v, got %v", failure, err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		test.Fatalf("count: %v", err)
	}
	if count != 0 {
		test.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestServiceOverSQLiteStore(test *testing.T) {
	test.Parallel()
	store := newSQLiteStore(test)
	renderer := pathRenderer{dir: "barcodes"}
	service, err := ticketing.NewService(store, renderer, func() time.Time { return createdAtValue })
	if err != nil {
		test.Fatalf("service: %v", err)
	}
	ctx := context.Background()
	before, err := store.Count(ctx)
	if err != nil {
		test.Fatalf("count: %v", err)
	}
	result, err := service.GenerateTicket(ctx, ticketing.NewTicketInput("Car", "Toyota", "ABC123"))
	if err != nil {
		test.Fatalf("generate: %v", err)
	}
	after, err := store.Count(ctx)
	if err != nil {
		test.Fatalf("count: %v", err)
	}
	if after != before+1 {
		test.Fatalf("expected row count to grow by one, %d -> %d", before, after)
	}
	if result.Ticket.ID != 1 || result.Ticket.Token.String() != "TEG-000001" {
		test.Fatalf("unexpected ticket %+v", result.Ticket)
	}
	tickets, err := store.ListTickets(ctx)
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	if filepath.Base(tickets[0].Filename) != "TEG-000001.png" {
		test.Fatalf("unexpected filename %q", tickets[0].Filename)
	}
}

type pathRenderer struct {
	dir string
}

func (renderer pathRenderer) Render(_ context.Context, request ticketing.RenderRequest) (string, error) {
	return filepath.Join(renderer.dir, request.Token.String()+".png"), nil
}
