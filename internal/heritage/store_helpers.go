package heritage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const itemColumns = "id, type, title, description, region, language, tags_json, audio_url, text_content, transcription, ai_analysis_json, processing_status, error_message, views_count, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id          string
		itemType    string
		title       string
		description sql.NullString
		region      sql.NullString
		language    sql.NullString
		tagsRaw     sql.NullString
		audioURL    sql.NullString
		textContent sql.NullString
		transcript  sql.NullString
		analysisRaw sql.NullString
		statusStr   string
		errMessage  sql.NullString
		viewsCount  int64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&itemType,
		&title,
		&description,
		&region,
		&language,
		&tagsRaw,
		&audioURL,
		&textContent,
		&transcript,
		&analysisRaw,
		&statusStr,
		&errMessage,
		&viewsCount,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	tags, err := decodeTags(tagsRaw.String)
	if err != nil {
		return nil, fmt.Errorf("decode tags for item %s: %w", id, err)
	}

	item := &Item{
		ID:               id,
		Type:             ItemType(itemType),
		Title:            title,
		Description:      description.String,
		Region:           region.String,
		Language:         language.String,
		Tags:             tags,
		AudioURL:         audioURL.String,
		TextContent:      textContent.String,
		Transcription:    transcript.String,
		AIAnalysisJSON:   analysisRaw.String,
		ProcessingStatus: Status(statusStr),
		ErrorMessage:     errMessage.String,
		ViewsCount:       viewsCount,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
