package telemetry

import (
	"log/slog"
	"time"
)

// Season names of the yearly cycle, in execution order.
const (
	PhaseFeeding     = "feeding"
	PhaseProcreation = "procreation"
	PhaseMigration   = "migration"
	PhaseAging       = "aging"
	PhaseWeightLoss  = "weight_loss"
	PhaseDeath       = "death"
)

// Phases lists the season names in execution order.
var Phases = []string{
	PhaseFeeding, PhaseProcreation, PhaseMigration,
	PhaseAging, PhaseWeightLoss, PhaseDeath,
}

// PerfSample holds timing data for a single year.
type PerfSample struct {
	YearDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks season timings over a rolling window of years.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	yearStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector averaging over
// windowSize years.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartYear begins timing a new simulated year.
func (p *PerfCollector) StartYear() {
	if p == nil {
		return
	}
	p.yearStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a season, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndYear finishes timing the current year and records the sample.
func (p *PerfCollector) EndYear() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		YearDuration: now.Sub(p.yearStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgYearDuration time.Duration
	MinYearDuration time.Duration
	MaxYearDuration time.Duration

	// Season breakdown (average durations and share of the year)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	YearsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minYear, maxYear time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.YearDuration

		if i == 0 || s.YearDuration < minYear {
			minYear = s.YearDuration
		}
		if s.YearDuration > maxYear {
			maxYear = s.YearDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgYearDuration: avg,
		MinYearDuration: minYear,
		MaxYearDuration: maxYear,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		YearsPerSecond:  perSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_year_us", s.AvgYearDuration.Microseconds()),
		slog.Int64("min_year_us", s.MinYearDuration.Microseconds()),
		slog.Int64("max_year_us", s.MaxYearDuration.Microseconds()),
		slog.Float64("years_per_sec", s.YearsPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Year           int     `csv:"year"`
	AvgYearUS      int64   `csv:"avg_year_us"`
	MinYearUS      int64   `csv:"min_year_us"`
	MaxYearUS      int64   `csv:"max_year_us"`
	YearsPerSec    float64 `csv:"years_per_sec"`
	FeedingPct     float64 `csv:"feeding_pct"`
	ProcreationPct float64 `csv:"procreation_pct"`
	MigrationPct   float64 `csv:"migration_pct"`
	AgingPct       float64 `csv:"aging_pct"`
	WeightLossPct  float64 `csv:"weight_loss_pct"`
	DeathPct       float64 `csv:"death_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(year int) PerfStatsCSV {
	return PerfStatsCSV{
		Year:           year,
		AvgYearUS:      s.AvgYearDuration.Microseconds(),
		MinYearUS:      s.MinYearDuration.Microseconds(),
		MaxYearUS:      s.MaxYearDuration.Microseconds(),
		YearsPerSec:    s.YearsPerSecond,
		FeedingPct:     s.PhasePct[PhaseFeeding],
		ProcreationPct: s.PhasePct[PhaseProcreation],
		MigrationPct:   s.PhasePct[PhaseMigration],
		AgingPct:       s.PhasePct[PhaseAging],
		WeightLossPct:  s.PhasePct[PhaseWeightLoss],
		DeathPct:       s.PhasePct[PhaseDeath],
	}
}
