package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstJoin   BookmarkType = "first_join"
	BookmarkSchoolSurge BookmarkType = "school_surge"
	BookmarkAllSchooled BookmarkType = "all_schooled"
	BookmarkOneSchool   BookmarkType = "one_school"
	BookmarkStagnation  BookmarkType = "stagnation"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
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

// BookmarkDetector detects schooling milestones across stats windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// One-shot milestones
	sawFirstJoin   bool
	sawAllSchooled bool
	sawOneSchool   bool

	stagnantWindows int // consecutive windows without grouping activity
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstJoin(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSchoolSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkAllSchooled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkOneSchool(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStagnation(stats); b != nil {
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

// previous returns the most recent stats before the current check.
func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx], true
}

func (bd *BookmarkDetector) checkFirstJoin(stats WindowStats) *Bookmark {
	if bd.sawFirstJoin || stats.PlayerGroupSize < 2 {
		return nil
	}
	bd.sawFirstJoin = true
	return &Bookmark{
		Type:        BookmarkFirstJoin,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Player school reached %d fish", stats.PlayerGroupSize),
	}
}

func (bd *BookmarkDetector) checkSchoolSurge(stats WindowStats) *Bookmark {
	prev, ok := bd.previous()
	if !ok || prev.PlayerGroupSize < 2 {
		return nil
	}
	gained := stats.PlayerGroupSize - prev.PlayerGroupSize
	if stats.PlayerGroupSize >= prev.PlayerGroupSize*2 && gained >= 5 {
		return &Bookmark{
			Type:        BookmarkSchoolSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Player school grew from %d to %d", prev.PlayerGroupSize, stats.PlayerGroupSize),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkAllSchooled(stats WindowStats) *Bookmark {
	if bd.sawAllSchooled || stats.Agents == 0 || stats.Ungrouped > 0 {
		return nil
	}
	bd.sawAllSchooled = true
	return &Bookmark{
		Type:        BookmarkAllSchooled,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Every fish belongs to one of %d schools", stats.Groups),
	}
}

func (bd *BookmarkDetector) checkOneSchool(stats WindowStats) *Bookmark {
	if bd.sawOneSchool || stats.Agents < 2 || stats.PlayerGroupSize != stats.Agents {
		return nil
	}
	bd.sawOneSchool = true
	return &Bookmark{
		Type:        BookmarkOneSchool,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("All %d fish follow the player", stats.Agents),
	}
}

// checkStagnation fires once after three consecutive quiet windows while
// fish are still ungrouped.
func (bd *BookmarkDetector) checkStagnation(stats WindowStats) *Bookmark {
	quiet := stats.GroupsFormed == 0 && stats.Propagations == 0 && stats.Merges == 0 && stats.Joins == 0
	if !quiet || stats.Ungrouped == 0 {
		bd.stagnantWindows = 0
		return nil
	}
	bd.stagnantWindows++
	if bd.stagnantWindows == 3 {
		return &Bookmark{
			Type:        BookmarkStagnation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("No schooling activity for 3 windows with %d fish alone", stats.Ungrouped),
		}
	}
	return nil
}
