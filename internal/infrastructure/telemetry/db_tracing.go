package telemetry

import (
	"fmt"

	"github.com/erp/invoicelock/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing adds the otelgorm plugin to db so every statement gets a
// span under the request span. It does nothing unless both telemetry and
// db tracing are enabled. Query variables are left out of the spans unless
// DBFullSQL is set. A nil provider means the global one.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, dbSystem string, provider trace.TracerProvider, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled || !cfg.DBTracing {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	opts := []otelgorm.Option{
		otelgorm.WithTracerProvider(provider),
		otelgorm.WithDBName(dbSystem),
	}
	if !cfg.DBFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", dbSystem),
		zap.Bool("full_sql", cfg.DBFullSQL),
	)
	return nil
}
