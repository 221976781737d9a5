package pgstore

import (
	"context"
	"time"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	errorOperationStore     = "store"
	errorSubjectSchema      = "schema"
	errorSubjectTicket      = "ticket"
	errorSubjectTransaction = "transaction"
	errorCodeBegin          = "begin"
	errorCodeCommit         = "commit"
	errorCodeCreate         = "create"
	errorCodeInsert         = "insert"
	errorCodeInvalid        = "invalid"
	errorCodeList           = "list"
	errorCodeScan           = "scan"
	errorCodeUpdate         = "update"

	sqlCreateTickets = `
		create table if not exists tickets (
			id bigserial primary key,
			token text not null default '',
			created_at timestamptz not null,
			car_type text not null default '',
			brand text not null default '',
			plate text not null default '',
			filename text not null default ''
		)
	`

	sqlCreateTokenIndex = `create index if not exists idx_tickets_token on tickets(token)`

	sqlInsertTicket = `
		insert into tickets(token, created_at, car_type, brand, plate, filename)
		values($1, $2, $3, $4, $5, $6)
		returning id
	`

	sqlUpdateTokenAndFile = `
		update tickets set token = $2, filename = $3
		where id = $1
	`

	sqlListTickets = `
		select id, token, created_at, car_type, brand, plate, filename
		from tickets
		order by id asc
	`
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ticketing.Store using a pgx connection pool (autocommit).
type Store struct {
	pool *pgxpool.Pool
	ops  operations
}

// TxStore implements ticketing.Store for an active transaction.
type TxStore struct {
	ops operations
}

// New returns a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, ops: operations{db: pool}}
}

// InitSchema creates the tickets table when it is missing.
func (store *Store) InitSchema(ctx context.Context) error {
	for _, statement := range []string{sqlCreateTickets, sqlCreateTokenIndex} {
		if _, err := store.pool.Exec(ctx, statement); err != nil {
			return wrapStoreError(errorSubjectSchema, errorCodeCreate, err)
		}
	}
	return nil
}

func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore ticketing.Store) error) error {
	tx, err := store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeBegin, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	transactionStore := &TxStore{ops: operations{db: tx}}
	if err := fn(ctx, transactionStore); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeCommit, err)
	}
	return nil
}

func (store *Store) InsertPlaceholder(ctx context.Context, input ticketing.TicketInput, createdAt time.Time) (ticketing.TicketID, error) {
	return store.ops.insertPlaceholder(ctx, input, createdAt)
}

func (store *Store) UpdateTokenAndFile(ctx context.Context, ticketID ticketing.TicketID, token ticketing.Token, filename string) error {
	return store.ops.updateTokenAndFile(ctx, ticketID, token, filename)
}

func (store *Store) InsertComplete(ctx context.Context, token ticketing.Token, input ticketing.TicketInput, filename string, createdAt time.Time) (ticketing.TicketID, error) {
	return store.ops.insertComplete(ctx, token, input, filename, createdAt)
}

func (store *Store) ListTickets(ctx context.Context) ([]ticketing.Ticket, error) {
	return store.ops.listTickets(ctx)
}

// WithTx reuses the active transaction.
func (store *TxStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore ticketing.Store) error) error {
	return fn(ctx, store)
}

func (store *TxStore) InsertPlaceholder(ctx context.Context, input ticketing.TicketInput, createdAt time.Time) (ticketing.TicketID, error) {
	return store.ops.insertPlaceholder(ctx, input, createdAt)
}

func (store *TxStore) UpdateTokenAndFile(ctx context.Context, ticketID ticketing.TicketID, token ticketing.Token, filename string) error {
	return store.ops.updateTokenAndFile(ctx, ticketID, token, filename)
}

func (store *TxStore) InsertComplete(ctx context.Context, token ticketing.Token, input ticketing.TicketInput, filename string, createdAt time.Time) (ticketing.TicketID, error) {
	return store.ops.insertComplete(ctx, token, input, filename, createdAt)
}

func (store *TxStore) ListTickets(ctx context.Context) ([]ticketing.Ticket, error) {
	return store.ops.listTickets(ctx)
}

type operations struct {
	db querier
}

func (ops operations) insertPlaceholder(ctx context.Context, input ticketing.TicketInput, createdAt time.Time) (ticketing.TicketID, error) {
	return ops.insert(ctx, "", input, "", createdAt)
}

func (ops operations) insertComplete(ctx context.Context, token ticketing.Token, input ticketing.TicketInput, filename string, createdAt time.Time) (ticketing.TicketID, error) {
	if token.IsZero() {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrInvalidToken)
	}
	if filename == "" {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrEmptyFilename)
	}
	return ops.insert(ctx, token.String(), input, filename, createdAt)
}

func (ops operations) insert(ctx context.Context, token string, input ticketing.TicketInput, filename string, createdAt time.Time) (ticketing.TicketID, error) {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var id int64
	err := ops.db.QueryRow(ctx, sqlInsertTicket,
		token,
		createdAt,
		input.VehicleType.String(),
		input.Brand,
		input.Plate,
		filename,
	).Scan(&id)
	if err != nil {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInsert, err)
	}
	ticketID, err := ticketing.NewTicketID(id)
	if err != nil {
		return 0, wrapStoreError(errorSubjectTicket, errorCodeInvalid, err)
	}
	return ticketID, nil
}

func (ops operations) updateTokenAndFile(ctx context.Context, ticketID ticketing.TicketID, token ticketing.Token, filename string) error {
	if token.IsZero() {
		return wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrInvalidToken)
	}
	if filename == "" {
		return wrapStoreError(errorSubjectTicket, errorCodeInvalid, ticketing.ErrEmptyFilename)
	}
	tag, err := ops.db.Exec(ctx, sqlUpdateTokenAndFile, ticketID.Int64(), token.String(), filename)
	if err != nil {
		return wrapStoreError(errorSubjectTicket, errorCodeUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectTicket, errorCodeUpdate, ticketing.ErrUnknownTicket)
	}
	return nil
}

func (ops operations) listTickets(ctx context.Context) ([]ticketing.Ticket, error) {
	rows, err := ops.db.Query(ctx, sqlListTickets)
	if err != nil {
		return nil, wrapStoreError(errorSubjectTicket, errorCodeList, err)
	}
	defer rows.Close()

	var tickets []ticketing.Ticket
	for rows.Next() {
		var row ticketRow
		if err := rows.Scan(&row.id, &row.token, &row.createdAt, &row.carType, &row.brand, &row.plate, &row.filename); err != nil {
			return nil, wrapStoreError(errorSubjectTicket, errorCodeScan, err)
		}
		ticket, err := row.toTicket()
		if err != nil {
			return nil, wrapStoreError(errorSubjectTicket, errorCodeInvalid, err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectTicket, errorCodeList, err)
	}
	return tickets, nil
}

type ticketRow struct {
	id        int64
	token     string
	createdAt time.Time
	carType   string
	brand     string
	plate     string
	filename  string
}

func (row ticketRow) toTicket() (ticketing.Ticket, error) {
	ticketID, err := ticketing.NewTicketID(row.id)
	if err != nil {
		return ticketing.Ticket{}, err
	}
	var token ticketing.Token
	if row.token != "" {
		token, err = ticketing.NewToken(row.token)
		if err != nil {
			return ticketing.Ticket{}, err
		}
	}
	return ticketing.Ticket{
		ID:          ticketID,
		Token:       token,
		CreatedAt:   row.createdAt,
		VehicleType: ticketing.VehicleType(row.carType),
		Brand:       row.brand,
		Plate:       row.plate,
		Filename:    row.filename,
	}, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return ticketing.WrapError(errorOperationStore, subject, code, err)
}
