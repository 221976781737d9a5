package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"go.uber.org/zap"
)

// ZapLogger forwards ticketing operation logs to zap.
type ZapLogger struct {
	logger *zap.Logger
}

// New returns a ZapLogger; a nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// LogOperation implements ticketing.OperationLogger.
func (zapLogger *ZapLogger) LogOperation(_ context.Context, entry ticketing.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("run_id", entry.RunID),
		zap.String("status", entry.Status),
	}
	if entry.TicketID != 0 {
		fields = append(fields, zap.Int64("ticket_id", entry.TicketID.Int64()))
	}
	if !entry.Token.IsZero() {
		fields = append(fields, zap.String("token", entry.Token.String()))
	}
	if entry.ImagePath != "" {
		fields = append(fields, zap.String("image_path", entry.ImagePath))
	}
	if !entry.Mirror.IsZero() {
		fields = append(fields,
			zap.String("mirror", string(entry.Mirror.Status())),
			zap.String("mirror_reason", entry.Mirror.Reason()),
		)
	}
	if entry.Rows > 0 {
		fields = append(fields, zap.Int("rows", entry.Rows))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		if ticketing.IsValidation(entry.Error) {
			zapLogger.logger.Warn("ticket operation rejected", fields...)
			return
		}
		zapLogger.logger.Error("ticket operation failed", fields...)
		return
	}
	zapLogger.logger.Info("ticket operation completed", fields...)
}
