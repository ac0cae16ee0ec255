package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultFiles lists the demo fixtures in load order.
var DefaultFiles = []string{
	"db_admin_fixture.json",
	"db_category_fixture.json",
	"db_product_fixture.json",
	"db_type_fixture.json",
	"db_brand_fixture.json",
	"db_product_inventory_fixture.json",
	"db_media_fixture.json",
	"db_stock_fixture.json",
}

// TreeRebuilder recomputes the category tree numbering after a load.
type TreeRebuilder interface {
	RebuildTree(ctx context.Context) error
}

type Loader struct {
	db      *gorm.DB
	tree    TreeRebuilder
	metrics aws_pkg.Recorder
	logger  *zap.Logger
}

// NewLoader builds a loader. tree and metrics may be nil.
func NewLoader(db *gorm.DB, tree TreeRebuilder, metrics aws_pkg.Recorder, logger *zap.Logger) *Loader {
	return &Loader{db: db, tree: tree, metrics: metrics, logger: logger}
}

// Result counts what a load wrote.
type Result struct {
	Files   int
	Records int
	Skipped []string
}

// LoadAll loads files from fsys in order. Missing files are skipped with a
// warning; any other failure stops the load.
func (l *Loader) LoadAll(ctx context.Context, fsys fs.FS, files []string) (Result, error) {
	var res Result
	categoriesTouched := false

	for _, name := range files {
		n, touched, err := l.LoadFile(ctx, fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Fixture file not found, skipping", zap.String("file", name))
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err != nil {
			return res, err
		}
		res.Files++
		res.Records += n
		categoriesTouched = categoriesTouched || touched
	}

	if categoriesTouched && l.tree != nil {
		if err := l.tree.RebuildTree(ctx); err != nil {
			return res, fmt.Errorf("rebuild category tree: %w", err)
		}
		l.logger.Info("Category tree rebuilt")
	}
	return res, nil
}

// LoadFile writes one fixture file in a single transaction. It reports the
// number of records and whether any category was written.
func (l *Loader) LoadFile(ctx context.Context, fsys fs.FS, name string) (int, bool, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row, err := rec.Row()
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", name, err)
		}
		rows = append(rows, row)
	}

	tables := map[string]bool{}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := writeRow(tx, row); err != nil {
				return err
			}
			tables[row.Table] = true
		}
		return resetSequences(tx, tables)
	})
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}

	if l.metrics != nil && l.metrics.IsEnabled() {
		if err := l.metrics.RecordCount(ctx, aws_pkg.MetricFixturesLoaded, map[string]string{"File": name}); err != nil {
			l.logger.Warn("Failed to record fixture metric", zap.Error(err))
		}
	}
	l.logger.Info("Fixture loaded", zap.String("file", name), zap.Int("records", len(rows)))
	return len(rows), tables[models.Category{}.TableName()], nil
}

func writeRow(tx *gorm.DB, row Row) error {
	if user, ok := row.Value.(*models.AdminUser); ok && !services.IsPasswordHash(user.Password) {
		hash, err := services.HashPassword(user.Password)
		if err != nil {
			return err
		}
		user.Password = hash
	}

	upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})
	if err := upsert.Omit(clause.Associations).Create(row.Value).Error; err != nil {
		return fmt.Errorf("write %s: %w", row.Table, err)
	}

	if product, ok := row.Value.(*models.Product); ok {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductCategory{}).Error; err != nil {
			return err
		}
		if len(row.Links) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row.Links).Error; err != nil {
				return fmt.Errorf("write product categories: %w", err)
			}
		}
	}
	return nil
}

// resetSequences moves postgres id sequences past the explicit pks just
// written. Other dialects track this on their own.
func resetSequences(tx *gorm.DB, tables map[string]bool) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, table := range names {
		sql := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %q",
			table, table,
		)
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
