// internal/service/catalog/application/service.go
package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/catalog/domain"
)

// CatalogService 编排价格模板、课程系列与招生期的全部管理用例，
// 以及面向结账/店面的报价用例。派生价格的重算只发生在这里。
type CatalogService struct {
	patternRepo domain.PatternRepository
	seriesRepo  domain.SeriesRepository
	termRepo    domain.TermRepository
	ruleEngine  domain.RuleEngine
	tracer      trace.Tracer
}

// NewCatalogService 创建目录服务实例。
func NewCatalogService(patternRepo domain.PatternRepository, seriesRepo domain.SeriesRepository,
	termRepo domain.TermRepository, ruleEngine domain.RuleEngine, tracer trace.Tracer) *CatalogService {
	return &CatalogService{
		patternRepo: patternRepo,
		seriesRepo:  seriesRepo,
		termRepo:    termRepo,
		ruleEngine:  ruleEngine,
		tracer:      tracer,
	}
}

// SavePattern 创建或更新一个价格模板。
// 更新成功后，所有引用该模板的系列立即按新比率重算派生价格——
// 缓存字段必须始终等于"对当前输入现算"的结果，不允许留到下次读取。
func (s *CatalogService) SavePattern(ctx context.Context, req *SavePatternRequest) (*domain.PricingPattern, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.SavePattern")
	defer span.End()

	pattern := &domain.PricingPattern{
		ID:                    req.ID,
		Name:                  req.Name,
		Description:           req.Description,
		CourseDiscountRate:    req.CourseDiscountRate,
		EarlyBirdDiscountRate: req.EarlyBirdDiscountRate,
		EarlyBirdDays:         req.EarlyBirdDays,
		HasMonthlyOption:      req.HasMonthlyOption,
		TaxRate:               req.TaxRate,
		EligibilityRule:       req.EligibilityRule,
	}
	if err := pattern.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.patternRepo.Save(ctx, pattern); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save pricing pattern: %w", err)
	}

	// 比率变更会影响所有引用方，同步重算落库
	affected, err := s.seriesRepo.FindByPatternID(ctx, pattern.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load series referencing pattern %d: %w", pattern.ID, err)
	}
	for _, series := range affected {
		if err := series.Recalculate(pattern); err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := s.seriesRepo.Save(ctx, series); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to persist recalculated series %d: %w", series.ID, err)
		}
	}
	if len(affected) > 0 {
		logger.Ctx(ctx).Info().Int64("pattern_id", pattern.ID).Int("series_count", len(affected)).
			Msg("recalculated derived prices for series referencing updated pattern")
	}

	return pattern, nil
}

// DeletePattern 删除一个价格模板。
// 仍被任何系列引用时整体拒绝，不做级联删除，也不改动任何数据。
func (s *CatalogService) DeletePattern(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "catalog.DeletePattern")
	defer span.End()
	span.SetAttributes(attribute.Int64("pattern.id", id))

	if _, err := s.patternRepo.FindByID(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	refs, err := s.seriesRepo.CountByPatternID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to count series referencing pattern %d: %w", id, err)
	}
	if refs > 0 {
		span.AddEvent("pattern delete rejected: still referenced")
		return domain.ErrPatternInUse
	}

	return s.patternRepo.Delete(ctx, id)
}

// ListPatterns 返回全部价格模板。
func (s *CatalogService) ListPatterns(ctx context.Context) ([]*domain.PricingPattern, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListPatterns")
	defer span.End()
	return s.patternRepo.FindAll(ctx)
}

// SaveSeries 创建或更新一个课程系列。
// 每次写入都以当前输入重算派生价格后一并持久化；
// 管理后台传来的任何 calc_* 值都会被忽略。
func (s *CatalogService) SaveSeries(ctx context.Context, req *SaveSeriesRequest) (*SeriesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.SaveSeries")
	defer span.End()

	series := &domain.CourseSeries{
		ID:                  req.ID,
		Title:               req.Title,
		Description:         req.Description,
		TotalSessions:       req.TotalSessions,
		DurationMinutes:     req.DurationMinutes,
		BasePricePerSession: req.BasePricePerSession,
		PricingPatternID:    req.PricingPatternID,
		EarlyBirdDeadline:   req.EarlyBirdDeadline,
	}
	if err := series.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	pattern, err := s.patternRepo.FindByID(ctx, series.PricingPatternID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := series.Recalculate(pattern); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.seriesRepo.Save(ctx, series); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save course series: %w", err)
	}

	span.AddEvent("derived prices recalculated and persisted")
	return NewSeriesResponse(series), nil
}

// GetSeries 返回一个系列及其缓存的派生价格。
func (s *CatalogService) GetSeries(ctx context.Context, id int64) (*SeriesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetSeries")
	defer span.End()

	series, err := s.seriesRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return NewSeriesResponse(series), nil
}

// DeleteSeries 删除一个系列：解除课堂会话的关联（不删会话），
// 清掉本系列的招生期，最后删除系列本身。
func (s *CatalogService) DeleteSeries(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteSeries")
	defer span.End()
	span.SetAttributes(attribute.Int64("series.id", id))

	if _, err := s.seriesRepo.FindByID(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.seriesRepo.UnlinkSessions(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to unlink sessions of series %d: %w", id, err)
	}
	if err := s.termRepo.DeleteBySeriesID(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete terms of series %d: %w", id, err)
	}
	return s.seriesRepo.Delete(ctx, id)
}

// SaveTerm 创建或更新一个招生期，日期约束在这里拦截。
func (s *CatalogService) SaveTerm(ctx context.Context, req *SaveTermRequest) (*domain.CourseTerm, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.SaveTerm")
	defer span.End()

	if _, err := s.seriesRepo.FindByID(ctx, req.SeriesID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	status := domain.TermStatus(req.Status)
	if status == "" {
		status = domain.TermStatusActive
	}
	term := &domain.CourseTerm{
		ID:                req.ID,
		SeriesID:          req.SeriesID,
		Name:              req.Name,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		EarlyBirdDeadline: req.EarlyBirdDeadline,
		Status:            status,
	}
	if err := term.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.termRepo.Save(ctx, term); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save course term: %w", err)
	}
	return term, nil
}

// DeleteTerm 删除一个招生期。
func (s *CatalogService) DeleteTerm(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteTerm")
	defer span.End()

	if _, err := s.termRepo.FindByID(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	return s.termRepo.Delete(ctx, id)
}

// Quote 是整期报名路径的权威报价：
// 结账流程在发起支付前必须经过这里选定价格档位。
//  1. 没有可报名的期 → ErrNoActiveTerm，整期路径不可达
//  2. 模板带适用规则且求值为 false → 回退单次档，折扣档位不提供
//  3. 其余情况按早鸟截止日解析结果落在 EARLY 或 COURSE
func (s *CatalogService) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Quote")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("series.id", req.SeriesID),
		attribute.Int64("term.id", req.TermID),
		attribute.Bool("quote.member", req.Member),
	)

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	series, err := s.seriesRepo.FindByID(ctx, req.SeriesID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	pattern, err := s.patternRepo.FindByID(ctx, series.PricingPatternID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	term, err := s.resolveTerm(ctx, series, req.TermID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no resolvable enrollment term")
		return nil, err
	}

	resp := &QuoteResponse{
		SeriesID:   series.ID,
		TermID:     term.ID,
		SingleIncl: series.Derived.SingleIncl,
	}

	// 模板适用规则：不适用时折扣档位整体收回，按单次价回退
	if pattern.EligibilityRule != "" {
		ok, err := s.ruleEngine.Evaluate(pattern.EligibilityRule, domain.Fact{
			Member:   req.Member,
			Sessions: series.TotalSessions,
		})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to evaluate eligibility rule of pattern %d: %w", pattern.ID, err)
		}
		if !ok {
			resp.Tier = domain.TierSingle
			resp.PriceIncl = series.Derived.SingleIncl
			resp.Reason = "pattern eligibility rule not satisfied"
			span.AddEvent("discount tiers withheld by eligibility rule")
			return resp, nil
		}
	}

	tier, price := domain.ResolveTier(series, term, pattern, now)
	deadline := domain.EffectiveDeadline(term, series, pattern)

	resp.Tier = tier
	resp.PriceIncl = price
	resp.MonthlyIncl = series.Derived.MonthlyIncl
	resp.SavingsIncl = series.Derived.SingleTotalIncl - price
	resp.Deadline = &deadline

	logger.Ctx(ctx).Info().
		Int64("series_id", series.ID).Int64("term_id", term.ID).
		Str("tier", string(tier)).Int64("price_incl", price).
		Msg("quote resolved")
	return resp, nil
}

// resolveTerm 定位报价针对的招生期：显式指定则校验归属，
// 未指定则在系列的在售期里挑开课最早的一期。
func (s *CatalogService) resolveTerm(ctx context.Context, series *domain.CourseSeries, termID int64, now time.Time) (*domain.CourseTerm, error) {
	if termID != 0 {
		term, err := s.termRepo.FindByID(ctx, termID)
		if err != nil {
			return nil, err
		}
		if term.SeriesID != series.ID {
			return nil, domain.ErrTermNotFound
		}
		// 显式指定也要过窗口校验，否则关闭的期还能被报出折扣价
		if !term.IsOpen(now) {
			return nil, domain.ErrTermClosed
		}
		return term, nil
	}

	terms, err := s.termRepo.FindBySeriesID(ctx, series.ID)
	if err != nil {
		return nil, err
	}
	open := terms[:0]
	for _, t := range terms {
		if t.IsOpen(now) {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return nil, domain.ErrNoActiveTerm
	}
	sort.Slice(open, func(i, j int) bool { return open[i].StartDate.Before(open[j].StartDate) })
	return open[0], nil
}
