package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mbkm-console/internal/model"
)

var ErrNothingToExport = errors.New("listing: nothing to export")

type ExportSource interface {
	Export(ctx context.Context, filters map[string]string) ([]model.Record, error)
}

// ExportRecorder keeps a history of written export files.
type ExportRecorder interface {
	RecordExport(ctx context.Context, resource, path string, rows int) error
}

type ExportOptions struct {
	Resource  string
	Source    ExportSource
	Notifier  Notifier
	Logger    *slog.Logger
	Recorder  ExportRecorder
	Delimiter rune
	Now       func() time.Time
}

type Exporter struct {
	resource string
	src      ExportSource
	notify   Notifier
	log      *slog.Logger
	recorder ExportRecorder
	delim    rune
	now      func() time.Time
}

func NewExporter(opts ExportOptions) *Exporter {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Exporter{
		resource: opts.Resource,
		src:      opts.Source,
		notify:   notifierOrDiscard(opts.Notifier),
		log:      log,
		recorder: opts.Recorder,
		delim:    opts.Delimiter,
		now:      opts.Now,
	}
	if e.delim == 0 {
		e.delim = ','
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Export fetches every record matching p (pagination ignored) and encodes it.
func (e *Exporter) Export(ctx context.Context, p QueryParams) ([]byte, int, error) {
	records, err := e.src.Export(ctx, p.ExportFilters())
	if err != nil {
		e.notify.Notify(Notice{Level: LevelError, Text: errorText(err, "Failed to export "+e.resource+".")})
		return nil, 0, err
	}
	if len(records) == 0 {
		e.notify.Notify(Notice{Level: LevelInfo, Text: "Nothing to export."})
		return nil, 0, ErrNothingToExport
	}
	return EncodeDelimited(records, e.delim), len(records), nil
}

// FileName is <resource>_<YYYY-MM-DD>.csv for today.
func (e *Exporter) FileName() string {
	return fmt.Sprintf("%s_%s.csv", e.resource, e.now().Format("2006-01-02"))
}

// ExportToFile writes the export into dir and returns the file path.
// No file is created when there is nothing to export.
func (e *Exporter) ExportToFile(ctx context.Context, p QueryParams, dir string) (string, int, error) {
	data, rows, err := e.Export(ctx, p)
	if err != nil {
		return "", 0, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("listing: export dir: %w", err)
	}
	path := filepath.Join(dir, e.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.notify.Notify(Notice{Level: LevelError, Text: "Failed to write " + path + "."})
		return "", 0, fmt.Errorf("listing: write export: %w", err)
	}
	if e.recorder != nil {
		if err := e.recorder.RecordExport(ctx, e.resource, path, rows); err != nil {
			e.log.Warn("export history not recorded", "path", path, "error", err)
		}
	}
	e.notify.Notify(Notice{Level: LevelSuccess, Text: fmt.Sprintf("Exported %d rows to %s.", rows, path)})
	return path, rows, nil
}

// EncodeDelimited writes a header from the first record's keys, then one line
// per record. A value is quoted only when it contains the delimiter.
func EncodeDelimited(records []model.Record, delim rune) []byte {
	if len(records) == 0 {
		return nil
	}
	sep := string(delim)
	keys := records[0].Keys()
	var b strings.Builder

	writeLine := func(values []string) {
		for i, v := range values {
			if i > 0 {
				b.WriteString(sep)
			}
			if strings.Contains(v, sep) {
				v = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
			}
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}

	writeLine(keys)
	values := make([]string, len(keys))
	for _, r := range records {
		for i, k := range keys {
			v, _ := r.Get(k)
			values[i] = formatValue(v)
		}
		writeLine(values)
	}
	return []byte(b.String())
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
