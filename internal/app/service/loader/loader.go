package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/logctx"
	"github.com/fatflowers/saasgen/pkg/types"
)

// ErrVerificationFailed is returned when the loaded tables do not match the
// dataset that was loaded.
var ErrVerificationFailed = errors.New("load verification failed")

const defaultBatchSize = 1000

// tables in dependency order; payments and subscriptions reference customers.
var tables = []any{&models.Customer{}, &models.Subscription{}, &models.Payment{}, &models.Cost{}}

type Loader struct {
	log       *zap.SugaredLogger
	db        *gorm.DB
	batchSize int
	mode      types.LoadMode
}

func New(log *zap.SugaredLogger, db *gorm.DB, cfg *config.Config) (*Loader, error) {
	l := &Loader{log: log, db: db, batchSize: cfg.Database.BatchSize, mode: cfg.Database.LoadMode}
	if l.batchSize <= 0 {
		l.batchSize = defaultBatchSize
	}
	if l.mode == "" {
		l.mode = types.LoadModeReplace
	}
	if l.mode != types.LoadModeReplace && l.mode != types.LoadModeUpsert {
		return nil, fmt.Errorf("unsupported load mode %q (want replace or upsert)", l.mode)
	}
	return l, nil
}

// Load writes ds into the database and verifies the result.
//
// In replace mode the four tables are dropped and recreated first. In upsert
// mode missing tables are created and existing rows are updated on primary
// key conflict. Rows are inserted in one transaction, so a failed load leaves
// the previous contents in place (apart from the schema reset in replace mode).
func (l *Loader) Load(ctx context.Context, ds *models.Dataset) (*Verification, error) {
	log := logctx.FromCtx(ctx, l.log)
	if ds == nil {
		return nil, fmt.Errorf("nil dataset")
	}
	started := time.Now()

	if err := l.migrate(ctx); err != nil {
		return nil, err
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insert(l, tx, "customers", ds.Customers); err != nil {
			return err
		}
		if err := insert(l, tx, "subscriptions", ds.Subscriptions); err != nil {
			return err
		}
		if err := insert(l, tx, "payments", ds.Payments); err != nil {
			return err
		}
		return insert(l, tx, "costs", ds.Costs)
	})
	if err != nil {
		log.Errorw("load failed", "mode", l.mode, "err", err)
		return nil, err
	}

	v, err := l.Verify(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.Check(ds, l.mode); err != nil {
		log.Errorw("load verification failed", "err", err)
		return v, err
	}
	log.Infow("dataset loaded",
		"mode", l.mode,
		"customers", v.Customers,
		"subscriptions", v.Subscriptions,
		"payments", v.Payments,
		"costs", v.Costs,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return v, nil
}

func (l *Loader) migrate(ctx context.Context) error {
	db := l.db.WithContext(ctx)
	if l.mode == types.LoadModeReplace {
		// drop in reverse dependency order
		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(tables[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func insert[T any](l *Loader, tx *gorm.DB, table string, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	db := tx.Session(&gorm.Session{})
	if l.mode == types.LoadModeUpsert {
		db = db.Clauses(clause.OnConflict{UpdateAll: true})
	}
	if err := db.CreateInBatches(rows, l.batchSize).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)
