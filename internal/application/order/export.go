package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// exportPageSize bounds how many orders a single export fetches
const exportPageSize = 5000

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStorageService uploads export artifacts and issues download links
type ObjectStorageService interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// ExportResult carries a rendered export workbook
type ExportResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	DownloadURL string `json:"download_url,omitempty"`
}

// ExportService renders order exports as xlsx workbooks
type ExportService struct {
	orderRepo order.OrderRepository
	storage   ObjectStorageService
	logger    *zap.Logger
}

// NewExportService creates a new ExportService. Storage is optional; when
// absent the workbook is only returned inline.
func NewExportService(orderRepo order.OrderRepository, storage ObjectStorageService, logger *zap.Logger) *ExportService {
	return &ExportService{
		orderRepo: orderRepo,
		storage:   storage,
		logger:    logger,
	}
}

var exportHeader = []string{
	"Order Number", "Platform", "Platform Order ID", "Status", "Payment Status",
	"Customer", "Recipient", "City", "Country",
	"Currency", "Subtotal", "Shipping Fee", "Discount", "Total",
	"Items", "Tracking Number", "Ordered At",
}

// Export renders the filtered orders into an xlsx workbook
func (s *ExportService) Export(ctx context.Context, orgID uuid.UUID, filter OrderListFilter) (*ExportResult, error) {
	domainFilter := order.OrderFilter{
		Filter:        shared.DefaultFilter(),
		Platform:      filter.Platform,
		OrderedAfter:  filter.OrderedAfter,
		OrderedBefore: filter.OrderedBefore,
	}
	if filter.Status != "" {
		status := order.Status(filter.Status)
		domainFilter.Status = &status
	}
	domainFilter.Page = 1
	domainFilter.PageSize = exportPageSize
	domainFilter.OrderBy = "ordered_at"
	domainFilter.OrderDir = "desc"

	orders, err := s.orderRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	const sheet = "Orders"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}
	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write export header: %w", err)
		}
	}

	for row, o := range orders {
		itemCount := int64(0)
		for _, item := range o.Items {
			itemCount += item.Quantity
		}
		values := []interface{}{
			o.OrderNumber,
			o.Platform.DisplayName(),
			o.PlatformOrderID,
			o.Status.String(),
			string(o.PaymentStatus),
			o.CustomerName,
			o.ShippingAddress.Recipient,
			o.ShippingAddress.City,
			o.ShippingAddress.Country,
			o.Currency,
			o.Subtotal.InexactFloat64(),
			o.ShippingFee.InexactFloat64(),
			o.Discount.InexactFloat64(),
			o.Total.InexactFloat64(),
			itemCount,
			o.TrackingNumber,
			o.OrderedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render export workbook: %w", err)
	}

	result := &ExportResult{
		FileName:    fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405")),
		ContentType: exportContentType,
		Data:        buf.Bytes(),
	}

	if s.storage != nil {
		key := fmt.Sprintf("exports/orders/%s/%s", orgID, result.FileName)
		if err := s.storage.PutObject(ctx, key, result.ContentType, result.Data); err != nil {
			s.logger.Warn("failed to upload order export", zap.String("key", key), zap.Error(err))
			return result, nil
		}
		url, err := s.storage.GenerateDownloadURL(ctx, key)
		if err != nil {
			s.logger.Warn("failed to presign order export", zap.String("key", key), zap.Error(err))
			return result, nil
		}
		result.DownloadURL = url
	}
	return result, nil
}
