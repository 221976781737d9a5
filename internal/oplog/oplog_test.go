package oplog

import (
	"context"
	"errors"
	"testing"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestLogOperationSuccess(test *testing.T) {
	test.Parallel()
	logger, logs := newObservedLogger()
	token, err := ticketing.NewToken("TEG-000001")
	if err != nil {
		test.Fatalf("token: %v", err)
	}
	logger.LogOperation(context.Background(), ticketing.OperationLog{
		Operation: "generate_ticket",
		RunID:     "run-1",
		TicketID:  1,
		Token:     token,
		ImagePath: "barcodes/TEG-000001.png",
		Mirror:    ticketing.MirrorUnavailable("legacy database not found"),
		Status:    "ok",
	})
	entries := logs.All()
	if len(entries) != 1 {
		test.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.InfoLevel {
		test.Fatalf("expected info level, got %v", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["token"] != "TEG-000001" || fields["ticket_id"] != int64(1) || fields["mirror_reason"] != "legacy database not found" {
		test.Fatalf("unexpected fields %v", fields)
	}
	if fields["run_id"] != "run-1" || fields["image_path"] != "barcodes/TEG-000001.png" {
		test.Fatalf("unexpected fields %v", fields)
	}
}

func TestLogOperationLevels(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name      string
		err       error
		wantLevel zapcore.Level
	}{
		{name: "validation", err: ticketing.ErrMissingVehicleType, wantLevel: zapcore.WarnLevel},
		{name: "failure", err: errors.New("disk full"), wantLevel: zapcore.ErrorLevel},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			logger, logs := newObservedLogger()
			logger.LogOperation(context.Background(), ticketing.OperationLog{Operation: "generate_ticket", Status: "error", Error: testCase.err})
			entries := logs.All()
			if len(entries) != 1 || entries[0].Level != testCase.wantLevel {
				test.Fatalf("expected one %v entry, got %+v", testCase.wantLevel, entries)
			}
			if entries[0].ContextMap()["error"] != testCase.err.Error() {
				test.Fatalf("expected error field, got %v", entries[0].ContextMap())
			}
		})
	}
}

func TestLogOperationOmitsEmptyFields(test *testing.T) {
	test.Parallel()
	logger, logs := newObservedLogger()
	logger.LogOperation(context.Background(), ticketing.OperationLog{Operation: "export", Rows: 0, Status: "ok"})
	fields := logs.All()[0].ContextMap()
	for _, key := range []string{"ticket_id", "token", "image_path", "mirror", "rows"} {
		if _, present := fields[key]; present {
			test.Fatalf("unexpected field %q in %v", key, fields)
		}
	}
}

func TestNewWithNilLogger(test *testing.T) {
	test.Parallel()
	New(nil).LogOperation(context.Background(), ticketing.OperationLog{Operation: "export"})
}
