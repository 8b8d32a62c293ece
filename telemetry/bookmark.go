package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/biosim/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPreyCrash        BookmarkType = "prey_crash"
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkExtinction       BookmarkType = "extinction"
)

// Bookmark marks a notable year of the run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Year        int          `csv:"year"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark at info level.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	logger.Info("bookmark",
		"type", string(b.Type),
		"year", b.Year,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable years from the stream of YearStats.
type BookmarkDetector struct {
	cfg config.TelemetryConfig

	// Rolling history (circular buffer)
	history     []YearStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPredMin  int     // minimum predator count since the last recovery
	seenPredators  bool    // recentPredMin holds a real observation
	recentPreyPeak int     // peak grazer count since the last crash
	stableYears    int     // consecutive calm years
	extinct        [2]bool // species currently extinct
	everPresent    [2]bool
}

// NewBookmarkDetector creates a detector using the given thresholds.
func NewBookmarkDetector(cfg config.TelemetryConfig) *BookmarkDetector {
	size := cfg.BookmarkHistory
	if size < 5 {
		size = 5 // minimum for stable ecosystem detection
	}
	if cfg.StableWindows < 1 {
		cfg.StableWindows = 1
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]YearStats, size),
		historySize: size,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats YearStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, b...)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Predator recovery: was <= 3, now >= 3x that
		if b := bd.checkPredatorRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Prey crash: dropped more than the configured share from the recent peak
		if b := bd.checkPreyCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	// Both populations present with low variation over the recent years
	if b := bd.checkStableEcosystem(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if !bd.seenPredators || stats.Predators < bd.recentPredMin {
		bd.recentPredMin = stats.Predators
		bd.seenPredators = true
	}
	if stats.Grazers > bd.recentPreyPeak {
		bd.recentPreyPeak = stats.Grazers
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats YearStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest recorded years, oldest first.
func (bd *BookmarkDetector) recent(n int) []YearStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]YearStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats YearStats) []Bookmark {
	var out []Bookmark
	counts := [2]int{stats.Grazers, stats.Predators}
	names := [2]string{"Grazers", "Predators"}
	for i, n := range counts {
		if n > 0 {
			bd.everPresent[i] = true
			bd.extinct[i] = false
			continue
		}
		if bd.everPresent[i] && !bd.extinct[i] {
			bd.extinct[i] = true
			out = append(out, Bookmark{
				Type:        BookmarkExtinction,
				Year:        stats.Year,
				Description: fmt.Sprintf("%s went extinct", names[i]),
			})
		}
	}
	return out
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats YearStats) *Bookmark {
	if bd.recentPredMin == 0 || bd.recentPredMin > 3 {
		return nil
	}

	threshold := bd.recentPredMin * 3
	if stats.Predators >= threshold && stats.Predators >= 6 {
		// Reset the minimum after triggering
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.Predators

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Year:        stats.Year,
			Description: fmt.Sprintf("Predator population recovered from %d to %d", oldMin, stats.Predators),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats YearStats) *Bookmark {
	if bd.recentPreyPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Grazers)/float64(bd.recentPreyPeak)
	if dropPercent > bd.cfg.CrashDropPercent && stats.Grazers < bd.recentPreyPeak-bd.cfg.CrashMinDrop {
		// Reset peak after crash
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = stats.Grazers

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Year:        stats.Year,
			Description: fmt.Sprintf("Grazers crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Grazers),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats YearStats) *Bookmark {
	// Need both populations present
	if stats.Grazers < 10 || stats.Predators < 3 {
		bd.stableYears = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	grazers := make([]float64, len(window))
	predators := make([]float64, len(window))
	for i, h := range window {
		grazers[i] = float64(h.Grazers)
		predators[i] = float64(h.Predators)
	}

	if CoefficientOfVariation(grazers) < bd.cfg.StableCV && CoefficientOfVariation(predators) < bd.cfg.StableCV {
		bd.stableYears++
	} else {
		bd.stableYears = 0
	}

	if bd.stableYears == bd.cfg.StableWindows { // trigger once per calm stretch
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Year:        stats.Year,
			Description: fmt.Sprintf("Stable ecosystem with %d grazers, %d predators over %d+ years", stats.Grazers, stats.Predators, bd.cfg.StableWindows),
		}
	}

	return nil
}
