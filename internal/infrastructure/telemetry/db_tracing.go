package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing adds otelgorm spans to every query. Query variables are
// kept out of spans unless includeVars is set.
func RegisterDBTracing(db *gorm.DB, dbName string, includeVars bool, logger *zap.Logger) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !includeVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	logger.Info("Database tracing enabled", zap.String("db_name", dbName))
	return nil
}
