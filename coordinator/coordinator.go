package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/logging"
	"github.com/hupe1980/equityscope/worker"
)

// State names one phase of the workflow.
type State string

// Workflow states, in execution order.
const (
	StateValidating      State = "validating"
	StateGathering       State = "gathering"
	StateQualityGating   State = "quality_gating"
	StateReporting       State = "reporting"
	StateFinalValidating State = "final_validating"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Checks run by the quality gate, reported in every outcome.
var qualityChecks = []string{
	"Researcher data validation",
	"Analyst data validation",
	"Vector memory storage verification",
	"Data consistency check",
}

// Coordinator owns the workflow: it validates the subject, fans work out to
// the researcher and analyst, gates the gathered data, and hands off to the
// reporter.
type Coordinator struct {
	researcher *worker.Researcher
	analyst    *worker.Analyst
	reporter   *worker.Reporter
	market     core.MarketData
	store      core.MemoryStore
	logger     logging.Logger
}

// New wires a coordinator over the three workers and their shared store. The
// market capability is used once more here for subject validation. A nil
// logger is replaced with a NoOpLogger.
func New(researcher *worker.Researcher, analyst *worker.Analyst, reporter *worker.Reporter, market core.MarketData, store core.MemoryStore, logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Coordinator{
		researcher: researcher,
		analyst:    analyst,
		reporter:   reporter,
		market:     market,
		store:      store,
		logger:     logger,
	}
}

// Run executes the full workflow for one symbol. Worker and synthesis
// failures degrade the run; the outcome is failed only when the subject does
// not validate or the workflow panics. The memory store is untouched until
// validation has passed.
func (c *Coordinator) Run(ctx context.Context, symbol string, tone core.Tone, parallel bool) (outcome core.Outcome) {
	start := time.Now()
	if !tone.Valid() {
		tone = core.ToneNeutral
	}

	defer func() {
		if r := recover(); r != nil {
			c.logPanic(fmt.Errorf("workflow panic: %v", r), symbol)
			outcome = core.Outcome{
				Success: false,
				Subject: core.Subject{Symbol: strings.ToUpper(strings.TrimSpace(symbol))},
				Err:     fmt.Sprintf("workflow panic: %v", r),
			}
		}
	}()

	c.logState(StateValidating, symbol)
	subject, err := c.validate(ctx, symbol)
	if err != nil {
		c.logState(StateFailed, symbol)
		return core.Outcome{
			Success: false,
			Subject: core.Subject{Symbol: strings.ToUpper(strings.TrimSpace(symbol))},
			Err:     err.Error(),
		}
	}

	if err := c.store.Clear(subject.Symbol); err != nil {
		c.logger.Warn("Failed to clear prior memory, continuing", "subject", subject.Symbol, "error", err)
	}

	c.logState(StateGathering, subject.Symbol)
	var research core.ResearchFindings
	var analysis core.AnalysisFindings
	if parallel {
		research, analysis = c.gatherParallel(ctx, subject)
	} else {
		research, analysis = c.gatherSequential(ctx, subject)
	}

	c.logState(StateQualityGating, subject.Symbol)
	check := c.qualityGate(research, analysis, subject)
	if !check.Passed {
		c.logger.Warn("Quality gate failed, proceeding with degraded data", "subject", subject.Symbol, "issues", strings.Join(check.Issues, "; "))
	}

	c.logState(StateReporting, subject.Symbol)
	report, err := c.reporter.GenerateReport(ctx, subject, research, analysis, tone)
	if err != nil {
		report.Err = err.Error()
	}

	c.logState(StateFinalValidating, subject.Symbol)
	final := validateReport(report)
	if !final.Valid {
		c.logger.Warn("Final validation flagged issues", "subject", subject.Symbol, "missing", strings.Join(final.MissingSections, ", "))
	}

	c.logState(StateDone, subject.Symbol)
	c.logger.Info("Workflow completed", "subject", subject.Symbol, "duration", time.Since(start), "quality_passed", check.Passed, "valid", final.Valid)

	return core.Outcome{
		Success:         true,
		Subject:         subject,
		Research:        research,
		Analysis:        analysis,
		Report:          report,
		QualityCheck:    check,
		FinalValidation: final,
	}
}

// validate normalizes the symbol and confirms it resolves to a real,
// currently-priced instrument. It runs before any store mutation so a failed
// validation leaves the memory store unchanged.
func (c *Coordinator) validate(ctx context.Context, symbol string) (core.Subject, error) {
	subject, err := core.NewSubject(symbol)
	if err != nil {
		return core.Subject{}, err
	}

	quote, err := c.market.Quote(ctx, subject.Symbol)
	if err != nil {
		return core.Subject{}, fmt.Errorf("symbol validation failed for %s: %w", subject.Symbol, err)
	}
	if quote.Err != "" {
		return core.Subject{}, fmt.Errorf("invalid symbol %s: %s", subject.Symbol, quote.Err)
	}
	if quote.CurrentPrice == 0 || quote.CompanyName == "" {
		return core.Subject{}, fmt.Errorf("invalid symbol %s: no market data available", subject.Symbol)
	}

	return subject.WithName(quote.CompanyName), nil
}

// gatherParallel runs the researcher and analyst concurrently. Each worker's
// hard failure is converted into degraded findings rather than propagated.
func (c *Coordinator) gatherParallel(ctx context.Context, subject core.Subject) (core.ResearchFindings, core.AnalysisFindings) {
	var (
		wg       sync.WaitGroup
		research core.ResearchFindings
		analysis core.AnalysisFindings
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		research = c.runResearch(ctx, subject)
	}()
	go func() {
		defer wg.Done()
		analysis = c.runAnalysis(ctx, subject)
	}()
	wg.Wait()

	return research, analysis
}

func (c *Coordinator) gatherSequential(ctx context.Context, subject core.Subject) (core.ResearchFindings, core.AnalysisFindings) {
	return c.runResearch(ctx, subject), c.runAnalysis(ctx, subject)
}

func (c *Coordinator) runResearch(ctx context.Context, subject core.Subject) core.ResearchFindings {
	start := time.Now()
	findings, err := c.researcher.Research(ctx, subject)
	c.logWorkerRun(core.WorkerResearcher, time.Since(start), err)
	if err != nil {
		return core.ResearchFindings{
			Subject: subject.Symbol,
			Sentiment: core.SentimentAnalysis{
				Overall:     "neutral",
				Score:       0,
				Explanation: "Research unavailable.",
			},
			Err: err.Error(),
		}
	}
	return findings
}

func (c *Coordinator) runAnalysis(ctx context.Context, subject core.Subject) core.AnalysisFindings {
	start := time.Now()
	findings, err := c.analyst.Analyze(ctx, subject)
	c.logWorkerRun(core.WorkerAnalyst, time.Since(start), err)
	if err != nil {
		return core.AnalysisFindings{Subject: subject.Symbol, Err: err.Error()}
	}
	return findings
}

// qualityGate inspects the gathered findings for completeness. It is
// informational: a failed gate is logged and recorded but never blocks
// reporting. The storage check only runs when the data itself is clean, so
// data issues are never masked by a storage symptom.
func (c *Coordinator) qualityGate(research core.ResearchFindings, analysis core.AnalysisFindings, subject core.Subject) core.QualityCheck {
	var issues []string

	if research.Degraded() {
		issues = append(issues, "Researcher error: "+research.Err)
	} else if len(research.Articles) == 0 {
		issues = append(issues, "No news articles found")
	}

	if analysis.Degraded() {
		issues = append(issues, "Analyst error: "+analysis.Err)
	} else {
		if analysis.Quote.CurrentPrice == 0 {
			issues = append(issues, "Missing current price data")
		}
		if analysis.Quote.PERatio == 0 {
			issues = append(issues, "Missing P/E ratio")
		}
	}

	if len(issues) == 0 {
		stats, err := c.store.Statistics()
		if err != nil || !stats.HasSubject(subject.Symbol) {
			issues = append(issues, "Data not properly stored in vector memory")
		}
	}

	return core.QualityCheck{
		Passed:          len(issues) == 0,
		Issues:          issues,
		ChecksPerformed: qualityChecks,
	}
}

// validateReport confirms every required section is present and non-empty.
func validateReport(report core.Report) core.FinalValidation {
	var missing []string
	for _, name := range core.RequiredSections {
		if strings.TrimSpace(report.Section(name)) == "" {
			missing = append(missing, name)
		}
	}
	return core.FinalValidation{
		Valid:           len(missing) == 0 && report.Err == "",
		MissingSections: missing,
		HasError:        report.Err != "",
	}
}

func (c *Coordinator) logState(state State, symbol string) {
	c.logger.Debug("Workflow state transition", "state", string(state), "symbol", symbol)
}

// logWorkerRun prefers the richer ScopeLogger helper when available.
func (c *Coordinator) logWorkerRun(name string, dur time.Duration, err error) {
	if wl, ok := c.logger.(interface {
		LogWorkerRun(worker string, dur time.Duration, degraded bool, err error)
	}); ok {
		wl.LogWorkerRun(name, dur, err != nil, err)
		return
	}
	if err != nil {
		c.logger.Error("Worker run failed", "worker", name, "duration", dur, "error", err)
		return
	}
	c.logger.Info("Worker run completed", "worker", name, "duration", dur)
}

func (c *Coordinator) logPanic(err error, symbol string) {
	if sl, ok := c.logger.(interface {
		ErrorWithStack(err error, msg string, args ...any)
	}); ok {
		sl.ErrorWithStack(err, "Workflow aborted by panic", "symbol", symbol)
		return
	}
	c.logger.Error("Workflow aborted by panic", "symbol", symbol, "error", err)
}
