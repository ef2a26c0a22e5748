// Package transfer exports and imports task lists as JSON, CSV or YAML.
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/lazytask/internal/model"
)

var ErrUnsupportedFormat = errors.New("transfer: unsupported format")

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json", "jsonc":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension on %q", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

var csvHeader = []string{"id", "description", "details", "status", "priority", "dueDate", "tags", "createdAt", "updatedAt"}

// record is a task as read from a file, before validation.
type record struct {
	ID          int      `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Details     string   `json:"details" yaml:"details"`
	Status      string   `json:"status" yaml:"status"`
	Priority    string   `json:"priority" yaml:"priority"`
	DueDate     string   `json:"dueDate" yaml:"dueDate"`
	Tags        []string `json:"tags" yaml:"tags"`
	CreatedAt   string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string   `json:"updatedAt" yaml:"updatedAt"`
}

func Encode(w io.Writer, format Format, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, t := range tasks {
			row := []string{
				strconv.Itoa(t.ID),
				t.Description,
				t.Details,
				string(t.Status),
				string(t.Priority),
				t.DueDate,
				strings.Join(t.Tags, ";"),
				t.CreatedAt.UTC().Format(time.RFC3339Nano),
				t.UpdatedAt.UTC().Format(time.RFC3339Nano),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decode(data []byte, format Format) ([]record, error) {
	switch format {
	case FormatJSON:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		trimmed := bytes.TrimSpace(std)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, errors.New("JSON file must contain an array of tasks")
		}
		var out []record
		if err := json.Unmarshal(std, &out); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return out, nil
	case FormatYAML:
		var out []record
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return out, nil
	case FormatCSV:
		return decodeCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decodeCSV(data []byte) ([]record, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("CSV file must have at least a header row and one data row")
	}
	columns := map[string]int{}
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := columns[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := record{
			Description: cell(row, "description"),
			Details:     cell(row, "details"),
			Status:      cell(row, "status"),
			Priority:    cell(row, "priority"),
			DueDate:     cell(row, "dueDate"),
			CreatedAt:   cell(row, "createdAt"),
			UpdatedAt:   cell(row, "updatedAt"),
		}
		if id, err := strconv.Atoi(cell(row, "id")); err == nil {
			rec.ID = id
		}
		for _, tag := range strings.Split(cell(row, "tags"), ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				rec.Tags = append(rec.Tags, tag)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// validate converts a record into a task, listing every problem found.
func (r record) validate(line int, now time.Time) (model.Task, error) {
	var problems []string
	if strings.TrimSpace(r.Description) == "" {
		problems = append(problems, "description is required and must be a string")
	}
	status, err := model.ParseStatus(r.Status)
	if err != nil {
		problems = append(problems, "status is required and must be one of: todo, in-progress, done")
	}
	priority, err := model.ParsePriority(r.Priority)
	if err != nil {
		problems = append(problems, "priority is required and must be one of: low, medium, high, critical")
	}
	due, err := model.ParseDueDate(r.DueDate)
	if err != nil {
		problems = append(problems, "dueDate must be in YYYY-MM-DD format")
	}
	createdAt, ok := parseInstant(r.CreatedAt, now)
	if !ok {
		problems = append(problems, "createdAt must be an RFC 3339 timestamp")
	}
	updatedAt, ok := parseInstant(r.UpdatedAt, now)
	if !ok {
		problems = append(problems, "updatedAt must be an RFC 3339 timestamp")
	}
	if len(problems) > 0 {
		return model.Task{}, fmt.Errorf("Line %d: %s", line, strings.Join(problems, ", "))
	}
	if updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Task{
		ID:          r.ID,
		Description: strings.TrimSpace(r.Description),
		Details:     strings.TrimSpace(r.Details),
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		Tags:        tags,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func parseInstant(raw string, fallback time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
