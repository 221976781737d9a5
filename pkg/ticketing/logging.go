package ticketing

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes one operator action.
type OperationLog struct {
	Operation string
	RunID     string
	TicketID  TicketID
	Token     Token
	ImagePath string
	Mirror    MirrorResult
	Rows      int
	Status    string
	Error     error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithMirror wires the best-effort legacy store.
func WithMirror(mirror Mirror) ServiceOption {
	return func(service *Service) {
		if mirror != nil {
			service.mirror = mirror
		}
	}
}

// WithTokenGenerator overrides the default token prefix.
func WithTokenGenerator(generator TokenGenerator) ServiceOption {
	return func(service *Service) {
		if generator.prefix != "" {
			service.tokens = generator
		}
	}
}

// WithVehicleCatalog overrides the default vehicle catalog.
func WithVehicleCatalog(catalog VehicleCatalog) ServiceOption {
	return func(service *Service) {
		if len(catalog.types) > 0 {
			service.catalog = catalog
		}
	}
}

// WithRunIDs overrides the correlation id source.
func WithRunIDs(newRunID func() string) ServiceOption {
	return func(service *Service) {
		if newRunID != nil {
			service.newRunID = newRunID
		}
	}
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Error != nil {
		entry.Status = operationStatusError
	} else if entry.Status == "" {
		entry.Status = operationStatusOK
	}
	service.logger.LogOperation(ctx, entry)
}
