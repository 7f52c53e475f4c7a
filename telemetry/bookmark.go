package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstKill     BookmarkType = "first_kill"
	BookmarkFlockWiped    BookmarkType = "flock_wiped"
	BookmarkHeavyLosses   BookmarkType = "heavy_losses"
	BookmarkShieldHolding BookmarkType = "shield_holding"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        uint64       `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments from consecutive windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	heavyLossKills int
	shieldWindows  int

	// State tracking
	sawKill        bool
	wiped          bool
	shieldedInARow int // consecutive windows with pushes and no kills
}

// NewBookmarkDetector creates a detector. heavyLossKills is the per-window kill
// count that counts as heavy losses; shieldWindows is the run of kill-free
// windows with robot contact needed for shield_holding.
func NewBookmarkDetector(historySize, heavyLossKills, shieldWindows int) *BookmarkDetector {
	if historySize < 1 {
		historySize = 1
	}
	if heavyLossKills < 1 {
		heavyLossKills = 1
	}
	if shieldWindows < 1 {
		shieldWindows = 1
	}
	return &BookmarkDetector{
		history:        make([]WindowStats, historySize),
		historySize:    historySize,
		heavyLossKills: heavyLossKills,
		shieldWindows:  shieldWindows,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstKill(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkHeavyLosses(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFlockWiped(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkShieldHolding(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstKill(stats WindowStats) *Bookmark {
	if bd.sawKill || stats.Kills == 0 {
		return nil
	}
	bd.sawKill = true
	return &Bookmark{
		Type:        BookmarkFirstKill,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First sheep lost, %d of %d remain", stats.LiveSheep, stats.TotalSheep),
	}
}

func (bd *BookmarkDetector) checkHeavyLosses(stats WindowStats) *Bookmark {
	if stats.Kills < bd.heavyLossKills {
		return nil
	}

	var recent float64
	history := bd.getHistory()
	for _, h := range history {
		recent += float64(h.Kills)
	}
	if len(history) > 0 {
		recent /= float64(len(history))
	}

	return &Bookmark{
		Type:        BookmarkHeavyLosses,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d sheep lost in one window (recent average %.1f)", stats.Kills, recent),
	}
}

func (bd *BookmarkDetector) checkFlockWiped(stats WindowStats) *Bookmark {
	if bd.wiped || stats.TotalSheep == 0 || stats.LiveSheep > 0 {
		return nil
	}
	bd.wiped = true
	return &Bookmark{
		Type:        BookmarkFlockWiped,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("All %d sheep lost", stats.TotalSheep),
	}
}

func (bd *BookmarkDetector) checkShieldHolding(stats WindowStats) *Bookmark {
	if stats.Kills > 0 || stats.Pushes == 0 || stats.LiveSheep == 0 {
		bd.shieldedInARow = 0
		return nil
	}
	bd.shieldedInARow++

	if bd.shieldedInARow == bd.shieldWindows { // trigger once per run
		return &Bookmark{
			Type:        BookmarkShieldHolding,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Robots held the predator off for %d windows with %d sheep alive", bd.shieldWindows, stats.LiveSheep),
		}
	}
	return nil
}
