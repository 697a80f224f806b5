package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/catalog"
	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/sales"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLookbackDays bounds the first pull of a shop that has no
// stored watermark yet
const DefaultLookbackDays = 90

// OrdersService pulls paid orders from the commerce platform and turns
// them into local catalog mirrors and order line facts. A run is
// all-or-nothing: any platform or store error aborts it and the shop's
// watermark stays where it was, so a retry covers the same window and
// the line items' primary keys absorb the duplicates.
type OrdersService struct {
	platform     integration.CommercePlatform
	products     catalog.ProductRepository
	variants     catalog.VariantRepository
	lines        sales.OrderLineRepository
	cursors      ingest.CursorRepository
	publisher    shared.EventPublisher
	runLock      ingest.RunLock
	logger       *zap.Logger
	lookbackDays int
}

// NewOrdersService creates a new OrdersService
func NewOrdersService(
	platform integration.CommercePlatform,
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	lines sales.OrderLineRepository,
	cursors ingest.CursorRepository,
	logger *zap.Logger,
) *OrdersService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrdersService{
		platform:     platform,
		products:     products,
		variants:     variants,
		lines:        lines,
		cursors:      cursors,
		logger:       logger,
		lookbackDays: DefaultLookbackDays,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrdersService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetRunLock sets the per-shop run lock. Without one, overlapping runs
// are not excluded.
func (s *OrdersService) SetRunLock(lock ingest.RunLock) {
	s.runLock = lock
}

// SetLookbackDays overrides the first-run lookback window
func (s *OrdersService) SetLookbackDays(days int) {
	if days > 0 {
		s.lookbackDays = days
	}
}

type runCounters struct {
	orders int
	lines  int
}

// Run executes one incremental orders pull for a shop. Pages are fetched
// strictly sequentially because each page's cursor comes from the
// previous response. On success the shop's watermark is advanced to the
// since date this run used and an OrdersIngested event is published.
func (s *OrdersService) Run(ctx context.Context, req OrdersRunRequest) (*OrdersRunResult, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	release, err := acquireRunLock(ctx, s.runLock, s.logger, runKindOrders, shopDomain)
	if err != nil {
		return nil, err
	}
	defer release()

	since, err := s.resolveSince(ctx, shopDomain, req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	s.logger.Info("Starting orders ingestion",
		zap.String("shop", shopDomain),
		zap.String("since", since.Format("2006-01-02")))

	counters := runCounters{}
	cursor := ""
	for {
		pull := &integration.OrderPullRequest{Shop: shopDomain, Since: since, Cursor: cursor}
		page, err := s.platform.PullPaidOrders(ctx, pull)
		if err != nil {
			return nil, fmt.Errorf("orders pull failed for shop %s: %w", shopDomain, err)
		}
		for i := range page.Orders {
			if err := s.ingestOrder(ctx, shopDomain, &page.Orders[i], &counters); err != nil {
				return nil, err
			}
		}
		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}

	watermark, err := s.advanceWatermark(ctx, shopDomain, since)
	if err != nil {
		return nil, err
	}

	result := &OrdersRunResult{
		Shop:            shopDomain,
		SinceISO:        watermark.SinceISO(),
		OrdersProcessed: counters.orders,
		LinesProcessed:  counters.lines,
		DurationMS:      time.Since(started).Milliseconds(),
	}

	if s.publisher != nil {
		event := ingest.NewOrdersIngestedEvent(shopDomain, result.SinceISO, counters.orders, counters.lines)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish orders ingested event",
				zap.String("shop", shopDomain), zap.Error(err))
		}
	}

	s.logger.Info("Orders ingestion finished",
		zap.String("shop", shopDomain),
		zap.Int("orders", counters.orders),
		zap.Int("lines", counters.lines),
		zap.Int64("duration_ms", result.DurationMS))
	return result, nil
}

// resolveSince picks the run's lower bound: explicit date, then day
// lookback, then the stored watermark, then the default lookback window
// for shops that have never run.
func (s *OrdersService) resolveSince(ctx context.Context, shopDomain string, req OrdersRunRequest) (time.Time, error) {
	if req.Since != nil && !req.Since.IsZero() {
		return *req.Since, nil
	}
	if req.Days > 0 {
		return time.Now().AddDate(0, 0, -req.Days), nil
	}
	watermark, err := s.cursors.Find(ctx, shopDomain)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load ingest cursor for shop %s: %w", shopDomain, err)
	}
	if watermark != nil {
		return watermark.SinceDate, nil
	}
	return time.Now().AddDate(0, 0, -s.lookbackDays), nil
}

// ingestOrder stores every line item of one order, draining the order's
// nested line item pages before the caller moves to the next order
func (s *OrdersService) ingestOrder(ctx context.Context, shopDomain string, order *integration.PlatformOrder, counters *runCounters) error {
	for i := range order.LineItems {
		if err := s.ingestLine(ctx, shopDomain, order, &order.LineItems[i]); err != nil {
			return err
		}
		counters.lines++
	}

	page := order.LineItemPage
	for page.HasNextPage {
		pull := &integration.OrderLinePullRequest{Shop: shopDomain, OrderID: order.ID, Cursor: page.EndCursor}
		more, err := s.platform.PullOrderLines(ctx, pull)
		if err != nil {
			return fmt.Errorf("line items pull failed for order %s: %w", order.ID, err)
		}
		for i := range more.Items {
			if err := s.ingestLine(ctx, shopDomain, order, &more.Items[i]); err != nil {
				return err
			}
			counters.lines++
		}
		page = more.PageInfo
	}

	counters.orders++
	return nil
}

// ingestLine upserts the catalog entries a line item references and then
// records the sales fact itself. Product and variant references survive
// as nullable IDs even when the catalog entry has been deleted upstream.
func (s *OrdersService) ingestLine(ctx context.Context, shopDomain string, order *integration.PlatformOrder, item *integration.PlatformLineItem) error {
	var productID, variantID *string

	if item.Product != nil {
		product, err := catalog.NewProduct(shopDomain, item.Product.ID, item.Product.Title, item.Product.Vendor, item.Product.CreatedAt)
		if err != nil {
			return err
		}
		if err := s.products.Upsert(ctx, product); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", item.Product.ID, err)
		}
		id := item.Product.ID
		productID = &id
	}

	if item.Variant != nil {
		id := item.Variant.ID
		variantID = &id
		// The variant mirror needs its owning product; a variant whose
		// product is gone keeps only the reference on the fact row.
		if item.Product != nil {
			variant, err := catalog.NewVariant(shopDomain, item.Variant.ID, item.Product.ID,
				item.Variant.Title, item.Variant.SKU, toOptionPairs(item.Variant.Options))
			if err != nil {
				return err
			}
			if err := s.variants.Upsert(ctx, variant); err != nil {
				return fmt.Errorf("failed to upsert variant %s: %w", item.Variant.ID, err)
			}
		}
	}

	line, err := sales.NewOrderLine(shopDomain, item.ID, order.ID, order.CreatedAt,
		productID, variantID, item.Quantity, order.Currency, item.NetAmount)
	if err != nil {
		return err
	}
	if _, err := s.lines.InsertIfAbsent(ctx, line); err != nil {
		return fmt.Errorf("failed to store order line %s: %w", item.ID, err)
	}
	return nil
}

// advanceWatermark moves the shop's stored watermark to the since date
// this run covered. The cursor never rewinds, so a manual re-run of an
// older window leaves it untouched.
func (s *OrdersService) advanceWatermark(ctx context.Context, shopDomain string, since time.Time) (*ingest.Cursor, error) {
	watermark, err := s.cursors.Find(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingest cursor for shop %s: %w", shopDomain, err)
	}
	if watermark == nil {
		watermark, err = ingest.NewCursor(shopDomain, since)
		if err != nil {
			return nil, err
		}
	} else {
		watermark.Advance(since)
	}
	if err := s.cursors.Upsert(ctx, watermark); err != nil {
		return nil, fmt.Errorf("failed to store ingest cursor for shop %s: %w", shopDomain, err)
	}
	return watermark, nil
}

func toOptionPairs(opts []integration.SelectedOption) []catalog.OptionPair {
	if len(opts) == 0 {
		return nil
	}
	pairs := make([]catalog.OptionPair, 0, len(opts))
	for _, opt := range opts {
		pairs = append(pairs, catalog.OptionPair{Name: opt.Name, Value: opt.Value})
	}
	return pairs
}
