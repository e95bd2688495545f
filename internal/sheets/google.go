package sheets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"mastdash/internal"
	"mastdash/internal/config"
	"mastdash/internal/util"
)

const defaultRange = "A:ZZ"

// GoogleSheets reads ranges through the Sheets API instead of a published export.
type GoogleSheets struct {
	service *gsheets.Service
}

func NewGoogleSheets(ctx context.Context, cfg config.Config) (*GoogleSheets, error) {
	if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{gsheets.SpreadsheetsReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
	return NewGoogleSheetsWithOptions(ctx, option.WithTokenSource(tokenSource))
}

func NewGoogleSheetsWithOptions(ctx context.Context, opts ...option.ClientOption) (*GoogleSheets, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleSheets{service: svc}, nil
}

// Values fetches a range with unformatted values so numbers arrive as numbers. The
// returned hash covers the raw values for the load history.
func (g *GoogleSheets) Values(ctx context.Context, spreadsheetID, rng string) (internal.Grid, string, error) {
	if rng == "" {
		rng = defaultRange
	}
	resp, err := g.service.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, "", fmt.Errorf("sheets api %s!%s: %w", spreadsheetID, rng, err)
	}

	blob, _ := json.Marshal(resp.Values)
	sum := sha256.Sum256(blob)
	return gridFromValues(resp.Values), hex.EncodeToString(sum[:]), nil
}

func gridFromValues(values [][]interface{}) internal.Grid {
	grid := internal.Grid{}
	for _, raw := range values {
		row := make(internal.Row, len(raw))
		blank := true
		for i, v := range raw {
			row[i] = valueCell(v)
			if !row[i].IsEmpty() && row[i].Trimmed() != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		grid = append(grid, row)
	}
	return grid
}

func valueCell(v interface{}) internal.Cell {
	switch t := v.(type) {
	case nil:
		return internal.Cell{}
	case float64:
		return internal.NumberCell(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return internal.NumberCell(f)
		}
		return internal.TextCell(t.String())
	case bool:
		return internal.TextCell(strings.ToUpper(strconv.FormatBool(t)))
	case string:
		return util.ParseCell(t)
	default:
		return internal.TextCell(fmt.Sprint(t))
	}
}
