// Package transfer implements CSV import and export of product data in the
// WooCommerce column layout.
package transfer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/internal/repository"
	"github.com/fx0883/productsShow/pkg/config"
	"github.com/fx0883/productsShow/prometheus"
)

// csvHeader is the WooCommerce product export column order we read and write.
var csvHeader = []string{
	"Type", "SKU", "Name", "Published", "Short description", "Description",
	"Stock", "Regular price", "Sale price", "Brand",
}

// ProductWriter creates products under quota enforcement.
type ProductWriter interface {
	CreateProduct(ctx context.Context, product *model.Product) error
}

// ProductReader lists the products visible in the current context.
type ProductReader interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
}

// RecordStore persists import/export job history.
type RecordStore interface {
	CreateImport(ctx context.Context, record *model.ImportRecord) error
	UpdateImport(ctx context.Context, record *model.ImportRecord) error
	CreateExport(ctx context.Context, record *model.ExportRecord) error
}

// Service runs CSV import and export jobs.
type Service struct {
	writer  ProductWriter
	reader  ProductReader
	records RecordStore
	cfg     config.TransferConfig
	logger  *zap.Logger
}

func NewService(writer ProductWriter, reader ProductReader, records RecordStore, cfg config.TransferConfig, logger *zap.Logger) *Service {
	return &Service{
		writer:  writer,
		reader:  reader,
		records: records,
		cfg:     cfg,
		logger:  logger,
	}
}

// Import reads product rows from r and creates them for the context's
// tenant. A row that fails to parse or breaches a quota is logged into the
// job record and skipped; the run continues.
func (s *Service) Import(ctx context.Context, userID uint, fileName string, r io.Reader) (*model.ImportRecord, error) {
	record := &model.ImportRecord{
		UserID:   userID,
		FileName: fileName,
		Format:   model.TransferFormatWooCommerce,
		Status:   model.TransferStatusProcessing,
	}
	if err := s.records.CreateImport(ctx, record); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		record.Status = model.TransferStatusFailed
		record.ErrorLog = "unreadable CSV header: " + err.Error()
		_ = s.records.UpdateImport(ctx, record)
		prometheus.TransferJobsCounter.WithLabelValues("import", "failed").Inc()
		return record, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := indexColumns(header)

	var errorLines []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		record.TotalRows++
		if err != nil {
			record.ErrorRows++
			errorLines = append(errorLines, fmt.Sprintf("row %d: %v", record.TotalRows, err))
			prometheus.ImportRowsCounter.WithLabelValues("error").Inc()
			continue
		}

		record.ProcessedRows++
		product, err := parseProductRow(columns, row)
		if err != nil {
			record.ErrorRows++
			errorLines = append(errorLines, fmt.Sprintf("row %d: %v", record.TotalRows, err))
			prometheus.ImportRowsCounter.WithLabelValues("error").Inc()
			continue
		}

		if err := s.writer.CreateProduct(ctx, product); err != nil {
			record.ErrorRows++
			errorLines = append(errorLines, fmt.Sprintf("row %d (%s): %v", record.TotalRows, product.SKU, err))
			prometheus.ImportRowsCounter.WithLabelValues("error").Inc()
			s.logger.Warn("Import row rejected",
				zap.String("sku", product.SKU),
				zap.Error(err))
			continue
		}

		record.SuccessRows++
		record.ProductCount++
		prometheus.ImportRowsCounter.WithLabelValues("success").Inc()
	}

	record.ErrorLog = strings.Join(errorLines, "\n")
	if record.ErrorRows > 0 && record.SuccessRows == 0 {
		record.Status = model.TransferStatusFailed
	} else {
		record.Status = model.TransferStatusCompleted
	}
	if err := s.records.UpdateImport(ctx, record); err != nil {
		return record, err
	}

	prometheus.TransferJobsCounter.WithLabelValues("import", record.Status).Inc()
	s.logger.Info("Import finished",
		zap.Uint("import_id", record.ID),
		zap.Int("total", record.TotalRows),
		zap.Int("success", record.SuccessRows),
		zap.Int("errors", record.ErrorRows))
	return record, nil
}

// Export writes the context tenant's products as CSV to the export
// directory and records the run. It returns the job record with the file
// location filled in.
func (s *Service) Export(ctx context.Context, userID uint, filter repository.ProductFilter) (*model.ExportRecord, error) {
	products, err := s.reader.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cfg.ExportDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	fileName := fmt.Sprintf("products_%s_%s.csv",
		time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	filePath := filepath.Join(s.cfg.ExportDir, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, products); err != nil {
		return nil, err
	}

	record := &model.ExportRecord{
		UserID:       userID,
		FileName:     fileName,
		FilePath:     filePath,
		Format:       model.TransferFormatWooCommerce,
		ProductCount: len(products),
	}
	if err := s.records.CreateExport(ctx, record); err != nil {
		return nil, err
	}

	prometheus.TransferJobsCounter.WithLabelValues("export", model.TransferStatusCompleted).Inc()
	return record, nil
}

// WriteCSV streams products to w in the WooCommerce column layout.
func WriteCSV(w io.Writer, products []model.Product) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range products {
		if err := writer.Write(productToRow(&products[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
		prometheus.ExportRowsCounter.Inc()
	}

	writer.Flush()
	return writer.Error()
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func field(columns map[string]int, row []string, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseProductRow(columns map[string]int, row []string) (*model.Product, error) {
	sku := field(columns, row, "SKU")
	if sku == "" {
		return nil, fmt.Errorf("missing SKU")
	}
	name := field(columns, row, "Name")
	if name == "" {
		return nil, fmt.Errorf("missing Name")
	}

	product := &model.Product{
		Name:             name,
		Slug:             slugify(name),
		SKU:              sku,
		Type:             model.ProductTypeSimple,
		Status:           model.ProductStatusDraft,
		ShortDescription: field(columns, row, "Short description"),
		Description:      field(columns, row, "Description"),
		Brand:            field(columns, row, "Brand"),
		StockStatus:      "instock",
	}

	if t := field(columns, row, "Type"); t != "" {
		product.Type = t
	}
	if field(columns, row, "Published") == "1" {
		product.Status = model.ProductStatusPublished
	}
	if stock := field(columns, row, "Stock"); stock != "" {
		quantity, err := strconv.Atoi(stock)
		if err != nil {
			return nil, fmt.Errorf("invalid Stock %q", stock)
		}
		product.StockQuantity = quantity
	}
	if price := field(columns, row, "Regular price"); price != "" {
		value, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Regular price %q", price)
		}
		product.RegularPrice = &value
		product.Price = &value
	}
	if price := field(columns, row, "Sale price"); price != "" {
		value, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Sale price %q", price)
		}
		product.SalePrice = &value
		product.Price = &value
	}

	return product, nil
}

func productToRow(product *model.Product) []string {
	published := "0"
	if product.Status == model.ProductStatusPublished {
		published = "1"
	}
	return []string{
		product.Type,
		product.SKU,
		product.Name,
		published,
		product.ShortDescription,
		product.Description,
		strconv.Itoa(product.StockQuantity),
		formatPrice(product.RegularPrice),
		formatPrice(product.SalePrice),
		product.Brand,
	}
}

func formatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
