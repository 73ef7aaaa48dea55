package services

import (
	"context"
	"log/slog"
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
)

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogTransactionStateChange(ctx context.Context, transactionID uuid.UUID, oldStatus, newStatus string) {
	al.logger.InfoContext(ctx, "transaction state change",
		slog.String("event_type", "transaction_state_change"),
		slog.String("transaction_id", transactionID.String()),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogBalanceUpdate(ctx context.Context, accountID uuid.UUID, field, oldBalance, newBalance string, transactionID uuid.UUID) {
	al.logger.InfoContext(ctx, "balance update",
		slog.String("event_type", "balance_update"),
		slog.String("account_id", accountID.String()),
		slog.String("field", field),
		slog.String("old_balance", oldBalance),
		slog.String("new_balance", newBalance),
		slog.String("transaction_id", transactionID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogMirrorCreated(ctx context.Context, originalID, mirrorID uuid.UUID, mirrorType models.TransactionType) {
	al.logger.InfoContext(ctx, "organization mirror created",
		slog.String("event_type", "mirror_created"),
		slog.String("original_transaction_id", originalID.String()),
		slog.String("mirror_transaction_id", mirrorID.String()),
		slog.String("mirror_type", string(mirrorType)),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogSettlementFailure(ctx context.Context, transactionID uuid.UUID, errorMsg string) {
	al.logger.WarnContext(ctx, "settlement failure",
		slog.String("event_type", "settlement_failure"),
		slog.String("transaction_id", transactionID.String()),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogReversal(ctx context.Context, transactionID uuid.UUID, reason string) {
	al.logger.WarnContext(ctx, "compensating reversal",
		slog.String("event_type", "compensating_reversal"),
		slog.String("transaction_id", transactionID.String()),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogCollateralStateChange(ctx context.Context, collateralID uuid.UUID, oldStatus, newStatus string) {
	al.logger.InfoContext(ctx, "collateral state change",
		slog.String("event_type", "collateral_state_change"),
		slog.String("collateral_id", collateralID.String()),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogLoanExtension(ctx context.Context, collateralID uuid.UUID, extensionDays int, fee string, newDueDate time.Time) {
	al.logger.InfoContext(ctx, "loan extension",
		slog.String("event_type", "loan_extension"),
		slog.String("collateral_id", collateralID.String()),
		slog.Int("extension_days", extensionDays),
		slog.String("fee", fee),
		slog.Time("new_due_date", newDueDate),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value("correlation_id").(string); ok {
		return correlationID
	}

	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}

	return ""
}
