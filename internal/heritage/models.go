package heritage

import (
	"strings"
	"time"
)

// Status represents the processing lifecycle of a heritage item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the processing lifecycle.
// Failed items stay terminal until an external actor retries them.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ItemType categorizes heritage items.
type ItemType string

const (
	TypeSong   ItemType = "song"
	TypeStory  ItemType = "story"
	TypeRitual ItemType = "ritual"
	TypeCraft  ItemType = "craft"
)

var allTypes = []ItemType{TypeSong, TypeStory, TypeRitual, TypeCraft}

// AllTypes returns the known heritage item types.
func AllTypes() []ItemType {
	cp := make([]ItemType, len(allTypes))
	copy(cp, allTypes)
	return cp
}

// ParseItemType converts a string into a known ItemType.
func ParseItemType(value string) (ItemType, bool) {
	normalized := ItemType(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range allTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// Item represents a heritage record persisted in SQLite.
//
// Content sources follow a fixed priority for analysis: AudioURL (via
// transcription), then TextContent, then Description. Transcription and
// AIAnalysisJSON are written only by the processing pipeline.
type Item struct {
	ID               string
	Type             ItemType
	Title            string
	Description      string
	Region           string
	Language         string
	Tags             []string
	AudioURL         string
	TextContent      string
	Transcription    string
	AIAnalysisJSON   string
	ProcessingStatus Status
	ErrorMessage     string
	ViewsCount       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Draft carries the caller-supplied fields for a new heritage item. The
// store assigns identifier, status, and timestamps.
type Draft struct {
	Type        ItemType
	Title       string
	Description string
	Region      string
	Language    string
	Tags        []string
	AudioURL    string
	TextContent string
}

// ContentForAnalysis returns the raw material the pipeline should analyze
// when no transcription is involved, honoring the text-then-description
// priority. Audio takes precedence over both and is handled by the caller.
func (i *Item) ContentForAnalysis() string {
	if strings.TrimSpace(i.TextContent) != "" {
		return i.TextContent
	}
	return i.Description
}

// HealthSummary describes aggregated item counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
