package shopify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchdash/backend/internal/domain/integration"
)

// Adapter implements the commerce platform port against the Shopify
// Admin GraphQL API. Access tokens are resolved per shop through the
// configured TokenSource.
type Adapter struct {
	client *Client
}

// NewAdapter creates a new Shopify adapter
func NewAdapter(config *Config, tokens TokenSource) (*Adapter, error) {
	client, err := NewClient(config, tokens)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// PullPaidOrders returns one page of paid orders created at or after req.Since
func (a *Adapter) PullPaidOrders(ctx context.Context, req *integration.OrderPullRequest) (*integration.OrderPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	variables := map[string]any{
		"query":     paidOrdersSearch(req.Since),
		"first":     req.PageSize,
		"lineFirst": lineItemPageSize,
	}
	if req.Cursor != "" {
		variables["after"] = req.Cursor
	}

	var data ordersData
	if err := a.client.do(ctx, req.Shop, queryPaidOrders, variables, &data); err != nil {
		return nil, err
	}

	page := &integration.OrderPage{
		Orders:   make([]integration.PlatformOrder, 0, len(data.Orders.Nodes)),
		PageInfo: convertPageInfo(data.Orders.PageInfo),
	}
	for _, node := range data.Orders.Nodes {
		order, err := convertOrder(node)
		if err != nil {
			return nil, err
		}
		page.Orders = append(page.Orders, *order)
	}
	return page, nil
}

// PullOrderLines returns one page of line items for a single order
func (a *Adapter) PullOrderLines(ctx context.Context, req *integration.OrderLinePullRequest) (*integration.LineItemPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	variables := map[string]any{
		"id":    req.OrderID,
		"first": req.PageSize,
	}
	if req.Cursor != "" {
		variables["after"] = req.Cursor
	}

	var data orderLinesData
	if err := a.client.do(ctx, req.Shop, queryOrderLines, variables, &data); err != nil {
		return nil, err
	}
	if data.Order == nil {
		return nil, fmt.Errorf("%w: order %s not found", integration.ErrPlatformRequestFailed, req.OrderID)
	}

	page := &integration.LineItemPage{
		Items:    make([]integration.PlatformLineItem, 0, len(data.Order.LineItems.Nodes)),
		PageInfo: convertPageInfo(data.Order.LineItems.PageInfo),
	}
	for _, node := range data.Order.LineItems.Nodes {
		item, err := convertLineItem(node)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// SoldUnitsSince sums units sold per product id across paid orders created
// at or after since, paging through orders internally
func (a *Adapter) SoldUnitsSince(ctx context.Context, shop string, since time.Time) (map[string]int, error) {
	if shop == "" {
		return nil, integration.ErrInvalidShop
	}
	if since.IsZero() {
		return nil, integration.ErrInvalidSince
	}

	totals := make(map[string]int)
	cursor := ""
	for {
		variables := map[string]any{
			"query": paidOrdersSearch(since),
			"first": a.client.config.PageSize,
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		var data ordersData
		if err := a.client.do(ctx, shop, querySoldUnits, variables, &data); err != nil {
			return nil, err
		}
		for _, order := range data.Orders.Nodes {
			for _, item := range order.LineItems.Nodes {
				if item.Product == nil {
					continue
				}
				totals[item.Product.ID] += item.Quantity
			}
		}
		if !data.Orders.PageInfo.HasNextPage {
			break
		}
		cursor = data.Orders.PageInfo.EndCursor
	}
	return totals, nil
}

// ---------------------------------------------------------------------------
// Collection Operations
// ---------------------------------------------------------------------------

// ListCollections returns one page of the shop's collections
func (a *Adapter) ListCollections(ctx context.Context, shop, cursor string) (*integration.CollectionPage, error) {
	if shop == "" {
		return nil, integration.ErrInvalidShop
	}

	variables := map[string]any{
		"first": a.client.config.PageSize,
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	var data collectionsData
	if err := a.client.do(ctx, shop, queryCollections, variables, &data); err != nil {
		return nil, err
	}

	page := &integration.CollectionPage{
		Collections: make([]integration.Collection, 0, len(data.Collections.Nodes)),
		PageInfo:    convertPageInfo(data.Collections.PageInfo),
	}
	for _, node := range data.Collections.Nodes {
		page.Collections = append(page.Collections, integration.Collection{
			ID:           node.ID,
			Title:        node.Title,
			Handle:       node.Handle,
			ProductCount: node.ProductsCount.Count,
		})
	}
	return page, nil
}

// CollectionProducts returns one page of a collection's products with live
// availability derived from their variants
func (a *Adapter) CollectionProducts(ctx context.Context, req *integration.CollectionProductsRequest) (*integration.CollectionProductPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	variables := map[string]any{
		"id":           req.CollectionID,
		"first":        req.PageSize,
		"variantFirst": variantProbeSize,
	}
	if req.Cursor != "" {
		variables["after"] = req.Cursor
	}

	var data collectionProductsData
	if err := a.client.do(ctx, req.Shop, queryCollectionProducts, variables, &data); err != nil {
		return nil, err
	}
	if data.Collection == nil {
		return nil, fmt.Errorf("%w: collection %s not found", integration.ErrPlatformRequestFailed, req.CollectionID)
	}

	page := &integration.CollectionProductPage{
		Products: make([]integration.CollectionProduct, 0, len(data.Collection.Products.Nodes)),
		PageInfo: convertPageInfo(data.Collection.Products.PageInfo),
	}
	for _, node := range data.Collection.Products.Nodes {
		page.Products = append(page.Products, convertCollectionProduct(node))
	}
	return page, nil
}

// ReorderCollection submits one chunk of positional moves. It returns the
// platform's job id, or an empty string when the moves applied synchronously
func (a *Adapter) ReorderCollection(ctx context.Context, req *integration.ReorderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	moves := make([]map[string]any, 0, len(req.Moves))
	for _, m := range req.Moves {
		// newPosition is a UInt scalar and travels as a string
		moves = append(moves, map[string]any{
			"id":          m.ProductID,
			"newPosition": strconv.Itoa(m.NewPosition),
		})
	}
	variables := map[string]any{
		"id":    req.CollectionID,
		"moves": moves,
	}

	var data reorderData
	if err := a.client.do(ctx, req.Shop, mutationReorderCollection, variables, &data); err != nil {
		return "", err
	}
	if data.CollectionReorderProducts == nil {
		return "", fmt.Errorf("%w: reorder returned no payload", integration.ErrPlatformInvalidResponse)
	}
	if len(data.CollectionReorderProducts.UserErrors) > 0 {
		return "", fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed,
			joinUserErrors(data.CollectionReorderProducts.UserErrors))
	}

	job := data.CollectionReorderProducts.Job
	if job == nil || job.Done {
		return "", nil
	}
	return job.ID, nil
}

// JobCompleted reports whether an asynchronous reorder job has finished
func (a *Adapter) JobCompleted(ctx context.Context, shop, jobID string) (bool, error) {
	if shop == "" {
		return false, integration.ErrInvalidShop
	}
	if jobID == "" {
		return false, integration.ErrJobNotFound
	}

	variables := map[string]any{"id": jobID}
	var data jobPollData
	if err := a.client.do(ctx, shop, queryJob, variables, &data); err != nil {
		return false, err
	}
	if data.Job == nil {
		return false, fmt.Errorf("%w: job %s", integration.ErrJobNotFound, jobID)
	}
	return data.Job.Done, nil
}

// ---------------------------------------------------------------------------
// Inventory Operations
// ---------------------------------------------------------------------------

// VariantsWithInventory returns one page of stock readings across the shop's
// tracked variants
func (a *Adapter) VariantsWithInventory(ctx context.Context, shop, cursor string) (*integration.VariantStockPage, error) {
	if shop == "" {
		return nil, integration.ErrInvalidShop
	}

	variables := map[string]any{
		"first": a.client.config.PageSize,
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	var data productVariantsData
	if err := a.client.do(ctx, shop, queryVariantStock, variables, &data); err != nil {
		return nil, err
	}

	page := &integration.VariantStockPage{
		Variants: make([]integration.VariantStock, 0, len(data.ProductVariants.Nodes)),
		PageInfo: convertPageInfo(data.ProductVariants.PageInfo),
	}
	for _, node := range data.ProductVariants.Nodes {
		stock, err := convertVariantStock(node)
		if err != nil {
			return nil, err
		}
		page.Variants = append(page.Variants, *stock)
	}
	return page, nil
}

// VariantAvailability returns available-to-sell quantities keyed by variant
// id. The quantity names shape is tried first; when the shop's API version
// rejects it the legacy inventoryQuantity shape is used instead.
func (a *Adapter) VariantAvailability(ctx context.Context, shop string, variantIDs []string) (map[string]int, error) {
	if shop == "" {
		return nil, integration.ErrInvalidShop
	}
	if len(variantIDs) == 0 {
		return map[string]int{}, nil
	}

	variables := map[string]any{"ids": variantIDs}

	var data variantAvailabilityData
	err := a.client.do(ctx, shop, queryVariantAvailability, variables, &data)
	if err != nil {
		if !isSchemaRejection(err) {
			return nil, err
		}
		data = variantAvailabilityData{}
		if err := a.client.do(ctx, shop, queryVariantAvailabilityLegacy, variables, &data); err != nil {
			return nil, err
		}
	}

	available := make(map[string]int, len(data.Nodes))
	for _, node := range data.Nodes {
		// unknown ids come back as null nodes
		if node == nil || node.ID == "" {
			continue
		}
		available[node.ID] = availabilityOf(node)
	}
	return available, nil
}

// ---------------------------------------------------------------------------
// Conversion Helpers
// ---------------------------------------------------------------------------

// paidOrdersSearch builds the order search term for paid orders created at
// or after since
func paidOrdersSearch(since time.Time) string {
	return fmt.Sprintf("financial_status:paid created_at:>=%s", since.UTC().Format(time.RFC3339))
}

func convertPageInfo(p pageInfoData) integration.PageInfo {
	return integration.PageInfo{
		HasNextPage: p.HasNextPage,
		EndCursor:   p.EndCursor,
	}
}

func convertOrder(node orderNode) (*integration.PlatformOrder, error) {
	order := &integration.PlatformOrder{
		ID:           node.ID,
		Name:         node.Name,
		CreatedAt:    node.CreatedAt,
		Currency:     node.CurrencyCode,
		LineItems:    make([]integration.PlatformLineItem, 0, len(node.LineItems.Nodes)),
		LineItemPage: convertPageInfo(node.LineItems.PageInfo),
	}
	for _, n := range node.LineItems.Nodes {
		item, err := convertLineItem(n)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", node.ID, err)
		}
		order.LineItems = append(order.LineItems, item)
	}
	return order, nil
}

func convertLineItem(node lineItemNode) (integration.PlatformLineItem, error) {
	net, err := parseAmount(node.DiscountedTotalSet.ShopMoney.Amount)
	if err != nil {
		return integration.PlatformLineItem{}, fmt.Errorf("line item %s: %w", node.ID, err)
	}
	item := integration.PlatformLineItem{
		ID:        node.ID,
		Title:     node.Title,
		Quantity:  node.Quantity,
		NetAmount: net,
	}
	if node.Product != nil {
		item.Product = &integration.LineItemProduct{
			ID:        node.Product.ID,
			Title:     node.Product.Title,
			Vendor:    node.Product.Vendor,
			CreatedAt: node.Product.CreatedAt,
		}
	}
	if node.Variant != nil {
		item.Variant = &integration.LineItemVariant{
			ID:      node.Variant.ID,
			Title:   node.Variant.Title,
			SKU:     node.Variant.SKU,
			Options: convertOptions(node.Variant.SelectedOptions),
		}
	}
	return item, nil
}

func convertOptions(options []selectedOptionData) []integration.SelectedOption {
	if len(options) == 0 {
		return nil
	}
	out := make([]integration.SelectedOption, 0, len(options))
	for _, o := range options {
		out = append(out, integration.SelectedOption{Name: o.Name, Value: o.Value})
	}
	return out
}

func convertCollectionProduct(node collectionProductNode) integration.CollectionProduct {
	availableCount := 0
	for _, v := range node.Variants.Nodes {
		if v.AvailableForSale {
			availableCount++
		}
	}
	return integration.CollectionProduct{
		ID:                node.ID,
		Title:             node.Title,
		Available:         availableCount > 0,
		VariantsAvailable: availableCount,
		TotalVariants:     len(node.Variants.Nodes),
	}
}

func convertVariantStock(node variantStockNode) (*integration.VariantStock, error) {
	stock := &integration.VariantStock{
		VariantID:        node.ID,
		ProductID:        node.Product.ID,
		ProductTitle:     node.Product.Title,
		ProductVendor:    node.Product.Vendor,
		ProductCreatedAt: node.Product.CreatedAt,
		Title:            node.Title,
		SKU:              node.SKU,
		Options:          convertOptions(node.SelectedOptions),
		OnHand:           node.InventoryQuantity,
	}
	if node.Price != "" {
		price, err := parseAmount(node.Price)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", node.ID, err)
		}
		stock.Price = &price
	}
	if node.InventoryItem.UnitCost != nil && node.InventoryItem.UnitCost.Amount != "" {
		cost, err := parseAmount(node.InventoryItem.UnitCost.Amount)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", node.ID, err)
		}
		stock.Cost = &cost
	}
	return stock, nil
}

// availabilityOf reads whichever availability shape the node carries
func availabilityOf(node *availabilityNode) int {
	if node.InventoryItem != nil {
		total := 0
		for _, level := range node.InventoryItem.InventoryLevels.Nodes {
			for _, q := range level.Quantities {
				if q.Name == "available" {
					total += q.Quantity
				}
			}
		}
		return total
	}
	if node.InventoryQuantity != nil {
		return *node.InventoryQuantity
	}
	return 0
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q: %v", integration.ErrPlatformInvalidResponse, s, err)
	}
	return d, nil
}

func joinUserErrors(errs []userErrorData) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), e.Message))
			continue
		}
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}

var _ integration.CommercePlatform = (*Adapter)(nil)
