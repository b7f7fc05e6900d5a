package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jadygoy/cafe_backend/config"
	"github.com/jadygoy/cafe_backend/metrics"
	"github.com/jadygoy/cafe_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cafe_backend/models")

// ReportLedger owns the daily report lifecycle: reconciliation on every
// write and one report per date.
type ReportLedger struct {
	store  ReportStore
	cache  ReportCache
	locker DateLocker
	logger *logrus.Logger
	now    func() time.Time
}

// NewReportLedger wires the ledger. cache and locker may be nil when Redis
// is not configured.
func NewReportLedger(store ReportStore, cache ReportCache, locker DateLocker, logger *logrus.Logger) *ReportLedger {
	if cache == nil {
		cache = noopReportCache{}
	}
	if locker == nil {
		locker = noopDateLocker{}
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	return &ReportLedger{
		store:  store,
		cache:  cache,
		locker: locker,
		logger: logger,
		now:    utcNow,
	}
}

// MySQL DATETIME(3) keeps milliseconds; truncate so stored and returned values match.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func startSpan(ctx context.Context, name string, date string) (context.Context, trace.Span) {
	if date == "" {
		return tracer.Start(ctx, name)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("report.date", date)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (l *ReportLedger) logError(ctx context.Context, funcName string, date string, err error) {
	fields := logrus.Fields{
		"module":   "ledger.go",
		"funcName": funcName,
		"date":     date,
	}
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		fields["correlation_id"] = cid
	}
	l.logger.WithFields(fields).Error(err.Error())
}

// evict drops the cached copy of date. A failed eviction is logged; the
// write itself already succeeded.
func (l *ReportLedger) evict(ctx context.Context, date string) {
	if err := l.cache.Remove(ctx, date); err != nil {
		l.logError(ctx, "evict", date, err)
	}
}

func isLedgerOutcome(err error) bool {
	return errors.Is(err, utils.ErrorRecordNotFound) ||
		errors.Is(err, utils.ErrorDuplicateReportDate) ||
		errors.Is(err, utils.ErrorInvalidReportDate) ||
		errors.Is(err, utils.ErrorDateMismatch) ||
		errors.Is(err, utils.ErrorResourceBusy)
}

// storeError logs and wraps unexpected store failures; ledger outcomes pass through.
func (l *ReportLedger) storeError(ctx context.Context, funcName string, date string, err error) error {
	if isLedgerOutcome(err) {
		return err
	}
	l.logError(ctx, funcName, date, err)
	return fmt.Errorf("%s %s: %w", funcName, date, err)
}

// Create reconciles input and stores it as the report of input.Date.
func (l *ReportLedger) Create(ctx context.Context, input *NewDailyReport) (result *DailyReport, err error) {
	if input == nil {
		input = &NewDailyReport{}
	}
	ctx, span := startSpan(ctx, "ReportLedger.Create", input.Date)
	defer func() {
		metrics.ObserveReportOperation("create", err)
		endSpan(span, err)
	}()

	if !utils.IsValidReportDate(input.Date) {
		return nil, utils.ErrorInvalidReportDate
	}

	release, err := l.locker.Lock(ctx, input.Date)
	if err != nil {
		return nil, l.storeError(ctx, "create", input.Date, err)
	}
	defer release()

	report := input.toReport(input.Date, l.now())
	if err := l.store.CreateReport(ctx, report); err != nil {
		return nil, l.storeError(ctx, "create", input.Date, err)
	}
	l.evict(ctx, input.Date)

	return report, nil
}

// List returns every report, most recent date first.
func (l *ReportLedger) List(ctx context.Context) (results []*DailyReport, err error) {
	ctx, span := startSpan(ctx, "ReportLedger.List", "")
	defer func() {
		metrics.ObserveReportOperation("list", err)
		endSpan(span, err)
	}()

	results, err = l.store.ListReports(ctx)
	if err != nil {
		return nil, l.storeError(ctx, "list", "", err)
	}
	return results, nil
}

// ListBetween is List restricted to from <= date <= to. Empty bounds are open.
func (l *ReportLedger) ListBetween(ctx context.Context, from, to string) ([]*DailyReport, error) {
	if (from != "" && !utils.IsValidReportDate(from)) || (to != "" && !utils.IsValidReportDate(to)) {
		return nil, utils.ErrorInvalidReportDate
	}
	all, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]*DailyReport, 0, len(all))
	for _, r := range all {
		// YYYY-MM-DD compares chronologically as a string
		if from != "" && r.Date < from {
			continue
		}
		if to != "" && r.Date > to {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// GetByDate returns the report stored under date.
func (l *ReportLedger) GetByDate(ctx context.Context, date string) (result *DailyReport, err error) {
	ctx, span := startSpan(ctx, "ReportLedger.GetByDate", date)
	defer func() {
		metrics.ObserveReportOperation("get", err)
		endSpan(span, err)
	}()

	cached, ok, cerr := l.cache.Get(ctx, date)
	if cerr != nil {
		l.logError(ctx, "getByDate cache", date, cerr)
	} else if ok {
		return cached, nil
	}

	// Mutations evict while holding the date lock, so the fill must hold it
	// too or a slow read could put back a report that was just replaced.
	release, lerr := l.locker.Lock(ctx, date)
	if lerr != nil {
		if !errors.Is(lerr, utils.ErrorResourceBusy) {
			l.logError(ctx, "getByDate lock", date, lerr)
		}
		result, err = l.store.FindReportByDate(ctx, date)
		if err != nil {
			return nil, l.storeError(ctx, "getByDate", date, err)
		}
		return result, nil
	}
	defer release()

	result, err = l.store.FindReportByDate(ctx, date)
	if err != nil {
		return nil, l.storeError(ctx, "getByDate", date, err)
	}

	if cerr := l.cache.Set(ctx, result); cerr != nil {
		l.logError(ctx, "getByDate cache", date, cerr)
	}
	return result, nil
}

// Update replaces the report of date with a report rebuilt from input.
// Fields omitted from input take their defaults, not the stored values.
// ID and CreatedAt of the stored report are kept.
func (l *ReportLedger) Update(ctx context.Context, date string, input *NewDailyReport) (result *DailyReport, err error) {
	if input == nil {
		input = &NewDailyReport{}
	}
	ctx, span := startSpan(ctx, "ReportLedger.Update", date)
	defer func() {
		metrics.ObserveReportOperation("update", err)
		endSpan(span, err)
	}()

	if input.Date != "" && input.Date != date {
		return nil, utils.ErrorDateMismatch
	}

	release, err := l.locker.Lock(ctx, date)
	if err != nil {
		return nil, l.storeError(ctx, "update", date, err)
	}
	defer release()

	report := input.toReport(date, l.now())
	if err := l.store.ReplaceReport(ctx, date, report); err != nil {
		return nil, l.storeError(ctx, "update", date, err)
	}
	l.evict(ctx, date)

	return report, nil
}

// Delete removes the report of date.
func (l *ReportLedger) Delete(ctx context.Context, date string) (err error) {
	ctx, span := startSpan(ctx, "ReportLedger.Delete", date)
	defer func() {
		metrics.ObserveReportOperation("delete", err)
		endSpan(span, err)
	}()

	release, err := l.locker.Lock(ctx, date)
	if err != nil {
		return l.storeError(ctx, "delete", date, err)
	}
	defer release()

	if err := l.store.DeleteReport(ctx, date); err != nil {
		return l.storeError(ctx, "delete", date, err)
	}
	l.evict(ctx, date)
	return nil
}

// RecomputeAll rewrites every report whose stored totals differ from
// CalculateReportTotals and returns the affected dates. With dryRun
// nothing is written.
func (l *ReportLedger) RecomputeAll(ctx context.Context, dryRun bool) ([]string, error) {
	reports, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, r := range reports {
		if r.hasTotals(r.calculateTotals()) {
			continue
		}
		if dryRun {
			changed = append(changed, r.Date)
			continue
		}
		rewritten, err := l.rewriteTotals(ctx, r.Date)
		if err != nil {
			return changed, err
		}
		if rewritten {
			changed = append(changed, r.Date)
		}
	}
	return changed, nil
}

// rewriteTotals re-reads date under its lock, since the listed copy may
// predate a concurrent Update or Delete, and rewrites it only if it still
// drifts.
func (l *ReportLedger) rewriteTotals(ctx context.Context, date string) (rewritten bool, err error) {
	ctx, span := startSpan(ctx, "ReportLedger.RecomputeAll", date)
	defer func() {
		metrics.ObserveReportOperation("recompute", err)
		endSpan(span, err)
	}()

	release, err := l.locker.Lock(ctx, date)
	if err != nil {
		return false, l.storeError(ctx, "recompute", date, err)
	}
	defer release()

	r, err := l.store.FindReportByDate(ctx, date)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, l.storeError(ctx, "recompute", date, err)
	}

	totals := r.calculateTotals()
	if r.hasTotals(totals) {
		return false, nil
	}
	r.applyTotals(totals)
	r.UpdatedAt = l.now()
	if err := l.store.ReplaceReport(ctx, date, r); err != nil {
		return false, l.storeError(ctx, "recompute", date, err)
	}
	l.evict(ctx, date)
	return true, nil
}
