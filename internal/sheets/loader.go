package sheets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mastdash/internal"
	"mastdash/internal/config"
	"mastdash/internal/logging"
)

const (
	KindCSV    = "csv"
	KindXLSX   = "xlsx"
	KindHTML   = "html"
	KindGoogle = "gsheets"
)

// Loader turns a source string (URL, local path or gsheets://id/range) into a grid.
type Loader struct {
	cfg    config.Config
	client *Client
	log    *slog.Logger

	mu     sync.Mutex
	google *GoogleSheets
}

func NewLoader(cfg config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{cfg: cfg, client: NewClient(cfg), log: logger}
}

// WithGoogleSheets injects a ready Sheets API client, bypassing the OAuth setup.
func (l *Loader) WithGoogleSheets(g *GoogleSheets) *Loader {
	l.mu.Lock()
	l.google = g
	l.mu.Unlock()
	return l
}

func (l *Loader) LoadGrid(ctx context.Context, source string) (internal.SourceDocument, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return internal.SourceDocument{}, fmt.Errorf("empty source")
	}

	if strings.HasPrefix(source, KindGoogle+"://") {
		return l.loadGoogle(ctx, source)
	}

	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		res, err := l.client.Fetch(ctx, source)
		if err != nil {
			return internal.SourceDocument{}, err
		}
		kind := DetectKind(source, res.ContentType)
		l.log.Debug("fetched source", "source", source, "kind", kind, "bytes", len(res.Body))
		return buildDocument(source, kind, res.Body, sheetFragment(u))
	}

	path := strings.TrimPrefix(source, "file://")
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.SourceDocument{}, err
	}
	kind := DetectKind(path, "")
	l.log.Debug("read source", "path", path, "kind", kind, "bytes", len(blob))
	return buildDocument(source, kind, blob, "")
}

func (l *Loader) loadGoogle(ctx context.Context, source string) (internal.SourceDocument, error) {
	rest := strings.TrimPrefix(source, KindGoogle+"://")
	spreadsheetID, rng, _ := strings.Cut(rest, "/")
	if spreadsheetID == "" {
		return internal.SourceDocument{}, fmt.Errorf("invalid google source %q (want gsheets://<id>/<range>)", source)
	}
	if unescaped, err := url.PathUnescape(rng); err == nil {
		rng = unescaped
	}

	g, err := l.googleSheets(ctx)
	if err != nil {
		return internal.SourceDocument{}, err
	}
	grid, hash, err := g.Values(ctx, spreadsheetID, rng)
	if err != nil {
		return internal.SourceDocument{}, err
	}
	return internal.SourceDocument{Source: source, Kind: KindGoogle, Hash: hash, Grid: grid}, nil
}

func (l *Loader) googleSheets(ctx context.Context) (*GoogleSheets, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.google != nil {
		return l.google, nil
	}
	g, err := NewGoogleSheets(ctx, l.cfg)
	if err != nil {
		return nil, err
	}
	l.google = g
	return g, nil
}

// DetectKind picks a parser from the URL/path shape first and the content type second;
// anything unrecognised is treated as CSV.
func DetectKind(source, contentType string) string {
	lower := strings.ToLower(source)
	if u, err := url.Parse(lower); err == nil && u.Scheme != "" && u.Host != "" {
		switch u.Query().Get("output") {
		case "xlsx":
			return KindXLSX
		case "html":
			return KindHTML
		case "csv", "tsv":
			return KindCSV
		}
		lower = u.Path
	}

	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return KindXLSX
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"), strings.HasSuffix(lower, "/pubhtml"):
		return KindHTML
	case strings.HasSuffix(lower, ".csv"):
		return KindCSV
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "spreadsheetml"):
		return KindXLSX
	case strings.Contains(ct, "text/html"):
		return KindHTML
	}
	return KindCSV
}

func buildDocument(source, kind string, blob []byte, sheet string) (internal.SourceDocument, error) {
	var (
		grid internal.Grid
		err  error
	)
	switch kind {
	case KindXLSX:
		grid, err = ParseXLSX(blob, sheet)
	case KindHTML:
		grid, err = ParseHTML(blob)
	default:
		grid, err = ParseCSV(blob)
	}
	if err != nil {
		return internal.SourceDocument{}, err
	}
	if len(grid) == 0 {
		return internal.SourceDocument{}, fmt.Errorf("source %s is empty", filepath.Base(source))
	}

	sum := sha256.Sum256(blob)
	return internal.SourceDocument{Source: source, Kind: kind, Hash: hex.EncodeToString(sum[:]), Grid: grid}, nil
}

// sheetFragment reads "#sheet=Name" from an xlsx URL.
func sheetFragment(u *url.URL) string {
	if u.Fragment == "" {
		return ""
	}
	values, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return ""
	}
	return values.Get("sheet")
}
