package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/internal/repository"
	"github.com/fx0883/productsShow/pkg/logger"
)

type transferService interface {
	Import(ctx context.Context, userID uint, fileName string, r io.Reader) (*model.ImportRecord, error)
	Export(ctx context.Context, userID uint, filter repository.ProductFilter) (*model.ExportRecord, error)
}

type transferHistory interface {
	GetImport(ctx context.Context, id uint) (*model.ImportRecord, error)
	ListImports(ctx context.Context) ([]model.ImportRecord, error)
	ListExports(ctx context.Context) ([]model.ExportRecord, error)
}

// TransferHandler implements CSV product import and export plus the job
// history views.
type TransferHandler struct {
	service transferService
	history transferHistory
}

func NewTransferHandler(service transferService, history transferHistory) *TransferHandler {
	return &TransferHandler{
		service: service,
		history: history,
	}
}

// Import accepts a multipart CSV upload and runs it synchronously. Bad rows
// are skipped and reported in the record's error log; the upload as a whole
// only fails when the file itself is unreadable.
func (h *TransferHandler) Import(c echo.Context) error {
	log := logger.FromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read uploaded file"})
	}
	defer src.Close()

	userID, _ := c.Get("user_id").(uint)
	record, err := h.service.Import(c.Request().Context(), userID, fileHeader.Filename, src)
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("Import finished",
		zap.Uint("record_id", record.ID),
		zap.Int("imported", record.SuccessRows),
		zap.Int("failed", record.ErrorRows))
	return c.JSON(http.StatusCreated, record)
}

func (h *TransferHandler) GetImport(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid import id"})
	}

	record, err := h.history.GetImport(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *TransferHandler) ListImports(c echo.Context) error {
	log := logger.FromContext(c)

	records, err := h.history.ListImports(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, records)
}

// Export writes the tenant's products to a CSV file on disk and records the
// job. Query params narrow the product set the same way the list endpoint
// does.
func (h *TransferHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)

	filter := repository.ProductFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
		Search: c.QueryParam("search"),
	}

	userID, _ := c.Get("user_id").(uint)
	record, err := h.service.Export(c.Request().Context(), userID, filter)
	if err != nil {
		return writeError(c, log, err)
	}

	log.Info("Export finished",
		zap.Uint("record_id", record.ID),
		zap.Int("exported", record.ProductCount))
	return c.JSON(http.StatusCreated, record)
}

func (h *TransferHandler) ListExports(c echo.Context) error {
	log := logger.FromContext(c)

	records, err := h.history.ListExports(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, records)
}
