package infra

import (
	"fmt"

	"lexfin/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Cliente{},
		&model.Expediente{},
		&model.Movimiento{},
		&model.Factura{},
		&model.FacturaItem{},
		&model.SecuenciaFactura{},
		&model.PlanDePago{},
		&model.Cuota{},
		&model.Recordatorio{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the dunning candidate queries: only non-settled
		// invoices are ever scanned by due-date.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_abiertas_vencimiento') THEN
		    CREATE INDEX idx_facturas_abiertas_vencimiento
		        ON facturas (fecha_vencimiento)
		        WHERE estado IN ('emitida', 'vencida');
		  END IF;
		END $$`,
		// Partial index for the installment sweep over active plans.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cuotas_pendientes_vencimiento') THEN
		    CREATE INDEX idx_cuotas_pendientes_vencimiento
		        ON cuotas (fecha_vencimiento)
		        WHERE estado = 'pendiente';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
