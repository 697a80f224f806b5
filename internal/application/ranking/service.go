package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/ranking"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Defaults applied when Options leaves a knob at its zero value
const (
	DefaultTopN           = 500
	DefaultSoldWindowDays = 90
	DefaultPollInterval   = time.Second
	DefaultMaxJobPolls    = 120
	DefaultBatchDelay     = time.Second
	DefaultPreviewSize    = 20
	DefaultBatchLimit     = 50
)

// Options tunes a ranking service. Zero values fall back to the package
// defaults.
type Options struct {
	TopN            int
	SoldWindowDays  int
	JobPollInterval time.Duration
	MaxJobPolls     int
	BatchDelay      time.Duration
	PreviewSize     int
}

func (o *Options) normalize() {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.SoldWindowDays <= 0 {
		o.SoldWindowDays = DefaultSoldWindowDays
	}
	if o.JobPollInterval <= 0 {
		o.JobPollInterval = DefaultPollInterval
	}
	if o.MaxJobPolls <= 0 {
		o.MaxJobPolls = DefaultMaxJobPolls
	}
	if o.BatchDelay <= 0 {
		o.BatchDelay = DefaultBatchDelay
	}
	if o.PreviewSize <= 0 {
		o.PreviewSize = DefaultPreviewSize
	}
}

// Service ranks collection products from live platform reads and pushes
// the resulting order back as chunked positional moves. All platform
// paging is strictly sequential; the one wait point is the fixed-interval
// poll on asynchronous reorder jobs, bounded so a stuck job surfaces as a
// timeout instead of hanging the run.
type Service struct {
	platform integration.CommercePlatform
	ruleSets ranking.RuleSetRepository
	logger   *zap.Logger
	opts     Options

	// sleep is swappable so tests do not wait out real poll intervals
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService creates a ranking service
func NewService(platform integration.CommercePlatform, ruleSets ranking.RuleSetRepository, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.normalize()
	return &Service{
		platform: platform,
		ruleSets: ruleSets,
		logger:   logger,
		opts:     opts,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run ranks one collection. With DryRun it computes the order and returns
// a bounded preview without touching the platform's sort; otherwise the
// desired order, capped to TopN, is applied in chunks.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	collectionID := strings.TrimSpace(req.CollectionID)
	if collectionID == "" {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection identifier is required")
	}

	started := time.Now()

	rules, err := s.effectiveRules(ctx, shopDomain, collectionID, req.Rules)
	if err != nil {
		return nil, err
	}

	products, err := s.collectProducts(ctx, shopDomain, collectionID)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Shop:         shopDomain,
		CollectionID: collectionID,
		Considered:   len(products),
		DryRun:       req.DryRun,
		Rules:        ruleNames(rules),
	}

	if len(products) == 0 {
		result.DurationMS = time.Since(started).Milliseconds()
		return result, nil
	}

	sold, err := s.platform.SoldUnitsSince(ctx, shopDomain, time.Now().AddDate(0, 0, -s.opts.SoldWindowDays))
	if err != nil {
		return nil, fmt.Errorf("sold units query failed for shop %s: %w", shopDomain, err)
	}

	ranked := make([]ranking.Product, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, ranking.Product{
			ID:              p.ID,
			Title:           p.Title,
			InStock:         p.Available,
			VariantsInStock: p.VariantsAvailable,
			Sold90:          sold[p.ID],
		})
	}
	ranking.Sort(ranked, rules)

	if req.DryRun {
		result.Preview = buildPreview(ranked, s.opts.PreviewSize)
		result.DurationMS = time.Since(started).Milliseconds()
		s.logger.Info("Ranking dry run finished",
			zap.String("shop", shopDomain),
			zap.String("collection", collectionID),
			zap.Int("considered", result.Considered))
		return result, nil
	}

	topN := s.opts.TopN
	if req.TopN != nil {
		topN = *req.TopN
	}
	ids := make([]string, len(ranked))
	for i, p := range ranked {
		ids[i] = p.ID
	}
	moves := ranking.BuildMoves(ids, topN)
	if len(moves) > 0 {
		if err := s.applyMoves(ctx, shopDomain, collectionID, moves); err != nil {
			return nil, err
		}
	}

	result.Moved = len(moves)
	result.DurationMS = time.Since(started).Milliseconds()
	s.logger.Info("Ranking run finished",
		zap.String("shop", shopDomain),
		zap.String("collection", collectionID),
		zap.Int("considered", result.Considered),
		zap.Int("moved", result.Moved),
		zap.Int64("duration_ms", result.DurationMS))
	return result, nil
}

// RunAll ranks every collection of a shop up to the requested limit.
// Collections are processed strictly one at a time with a fixed delay in
// between; a failure on one collection is recorded in its outcome and the
// batch moves on.
func (s *Service) RunAll(ctx context.Context, req RunAllRequest) (*RunAllResult, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	started := time.Now()
	collections, err := s.listCollections(ctx, shopDomain, limit)
	if err != nil {
		return nil, err
	}

	batch := &RunAllResult{Shop: shopDomain, DryRun: req.DryRun}
	for i, collection := range collections {
		if i > 0 {
			if err := s.sleep(ctx, s.opts.BatchDelay); err != nil {
				return nil, err
			}
		}

		outcome := CollectionOutcome{CollectionID: collection.ID, Title: collection.Title}
		runResult, runErr := s.Run(ctx, RunRequest{
			Shop:         shopDomain,
			CollectionID: collection.ID,
			TopN:         req.TopN,
			DryRun:       req.DryRun,
		})
		switch {
		case runErr != nil:
			outcome.Error = runErr.Error()
			batch.Failed++
			s.logger.Warn("Ranking run failed in batch",
				zap.String("shop", shopDomain),
				zap.String("collection", collection.ID),
				zap.Error(runErr))
			// A dead context would only fail every remaining collection
			// the same way
			if ctx.Err() != nil {
				batch.Results = append(batch.Results, outcome)
				batch.Processed = len(batch.Results)
				batch.DurationMS = time.Since(started).Milliseconds()
				return batch, nil
			}
		case runResult.Considered == 0:
			outcome.SkipReason = "no products in collection"
		default:
			outcome.Considered = runResult.Considered
			outcome.Moved = runResult.Moved
		}
		batch.Results = append(batch.Results, outcome)
	}

	batch.Processed = len(batch.Results)
	batch.DurationMS = time.Since(started).Milliseconds()
	s.logger.Info("Ranking batch finished",
		zap.String("shop", shopDomain),
		zap.Int("processed", batch.Processed),
		zap.Int("failed", batch.Failed),
		zap.Int64("duration_ms", batch.DurationMS))
	return batch, nil
}

// GetRules returns the stored and effective rule sequence for a collection
func (s *Service) GetRules(ctx context.Context, shop, collectionID string) (*RulesResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if strings.TrimSpace(collectionID) == "" {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection identifier is required")
	}

	ruleSet, err := s.ruleSets.FindByCollection(ctx, shopDomain, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}
	response := &RulesResponse{Shop: shopDomain, CollectionID: collectionID}
	if ruleSet == nil {
		response.Stored = []string{}
		response.Effective = ruleNames(ranking.DefaultRules())
		return response, nil
	}
	response.Stored = ruleSet.Names()
	if response.Stored == nil {
		response.Stored = []string{}
	}
	response.Effective = ruleNames(ruleSet.Rules())
	return response, nil
}

// SaveRules replaces the persisted rule sequence for a collection. Unknown
// identifiers are stored as entered and filtered at read time.
func (s *Service) SaveRules(ctx context.Context, shop, collectionID string, names []string) (*RulesResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	ruleSet, err := s.ruleSets.FindByCollection(ctx, shopDomain, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}
	if ruleSet == nil {
		ruleSet, err = ranking.NewRuleSet(shopDomain, collectionID, names)
		if err != nil {
			return nil, err
		}
	} else if err := ruleSet.SetNames(names); err != nil {
		return nil, err
	}
	if err := s.ruleSets.Upsert(ctx, ruleSet); err != nil {
		return nil, fmt.Errorf("failed to store rule set: %w", err)
	}

	s.logger.Info("Ranking rules updated",
		zap.String("shop", shopDomain),
		zap.String("collection", collectionID),
		zap.Strings("rules", names))
	return s.GetRules(ctx, shopDomain, collectionID)
}

// ListCollections returns one page of the shop's collections
func (s *Service) ListCollections(ctx context.Context, shop, cursor string) (*CollectionListResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	page, err := s.platform.ListCollections(ctx, shopDomain, cursor)
	if err != nil {
		return nil, fmt.Errorf("collections pull failed for shop %s: %w", shopDomain, err)
	}
	response := &CollectionListResponse{
		Collections: make([]CollectionListItem, 0, len(page.Collections)),
		HasNextPage: page.PageInfo.HasNextPage,
	}
	if page.PageInfo.HasNextPage {
		response.EndCursor = page.PageInfo.EndCursor
	}
	for _, collection := range page.Collections {
		response.Collections = append(response.Collections, CollectionListItem{
			ID:           collection.ID,
			Title:        collection.Title,
			Handle:       collection.Handle,
			ProductCount: collection.ProductCount,
		})
	}
	return response, nil
}

// effectiveRules resolves the rule sequence for a run: a per-request
// override wins, then the persisted sequence, then the default
func (s *Service) effectiveRules(ctx context.Context, shop, collectionID string, override []string) ([]ranking.Rule, error) {
	if len(override) > 0 {
		return ranking.ParseRules(override), nil
	}
	ruleSet, err := s.ruleSets.FindByCollection(ctx, shop, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}
	if ruleSet == nil {
		return ranking.DefaultRules(), nil
	}
	return ruleSet.Rules(), nil
}

// collectProducts drains every page of the collection's membership
func (s *Service) collectProducts(ctx context.Context, shop, collectionID string) ([]integration.CollectionProduct, error) {
	var products []integration.CollectionProduct
	cursor := ""
	for {
		page, err := s.platform.CollectionProducts(ctx, &integration.CollectionProductsRequest{
			Shop:         shop,
			CollectionID: collectionID,
			Cursor:       cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("collection products pull failed for %s: %w", collectionID, err)
		}
		products = append(products, page.Products...)
		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}
	return products, nil
}

// applyMoves submits the desired order in chunks the platform accepts,
// waiting out each chunk's asynchronous job before sending the next so
// moves are never applied out of order
func (s *Service) applyMoves(ctx context.Context, shop, collectionID string, moves []ranking.Move) error {
	chunks := ranking.ChunkMoves(moves, ranking.MaxMovesPerChunk)
	for i, chunk := range chunks {
		jobID, err := s.platform.ReorderCollection(ctx, &integration.ReorderRequest{
			Shop:         shop,
			CollectionID: collectionID,
			Moves:        toPlatformMoves(chunk),
		})
		if err != nil {
			return fmt.Errorf("reorder chunk %d/%d failed for %s: %w", i+1, len(chunks), collectionID, err)
		}
		if jobID == "" {
			continue
		}
		if err := s.awaitJob(ctx, shop, jobID); err != nil {
			return fmt.Errorf("reorder chunk %d/%d for %s: %w", i+1, len(chunks), collectionID, err)
		}
	}
	return nil
}

// awaitJob polls a reorder job at a fixed interval until it completes or
// the poll budget runs out
func (s *Service) awaitJob(ctx context.Context, shop, jobID string) error {
	for poll := 0; poll < s.opts.MaxJobPolls; poll++ {
		if err := s.sleep(ctx, s.opts.JobPollInterval); err != nil {
			return err
		}
		done, err := s.platform.JobCompleted(ctx, shop, jobID)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("%w: job %s still running after %d polls", integration.ErrJobTimeout, jobID, s.opts.MaxJobPolls)
}

// listCollections pages collections until the limit is reached or no
// pages remain
func (s *Service) listCollections(ctx context.Context, shop string, limit int) ([]integration.Collection, error) {
	var collections []integration.Collection
	cursor := ""
	for len(collections) < limit {
		page, err := s.platform.ListCollections(ctx, shop, cursor)
		if err != nil {
			return nil, fmt.Errorf("collections pull failed for shop %s: %w", shop, err)
		}
		collections = append(collections, page.Collections...)
		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}
	if len(collections) > limit {
		collections = collections[:limit]
	}
	return collections, nil
}

func buildPreview(ranked []ranking.Product, size int) []PreviewEntry {
	if size > len(ranked) {
		size = len(ranked)
	}
	preview := make([]PreviewEntry, 0, size)
	for i := 0; i < size; i++ {
		preview = append(preview, PreviewEntry{
			Position:        i,
			ProductID:       ranked[i].ID,
			Title:           ranked[i].Title,
			InStock:         ranked[i].InStock,
			VariantsInStock: ranked[i].VariantsInStock,
			Sold90:          ranked[i].Sold90,
		})
	}
	return preview
}

func ruleNames(rules []ranking.Rule) []string {
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.String())
	}
	return names
}

func toPlatformMoves(chunk []ranking.Move) []integration.Move {
	moves := make([]integration.Move, 0, len(chunk))
	for _, move := range chunk {
		moves = append(moves, integration.Move{ProductID: move.ID, NewPosition: move.NewPosition})
	}
	return moves
}
