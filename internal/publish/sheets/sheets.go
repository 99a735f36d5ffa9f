// Package sheets publishes the report as a new Google Spreadsheet with one
// worksheet per tab. Values are written RAW so numbers stay numbers; header
// styling is best effort and never fails a publish.
package sheets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"reportmerge/internal/publish"
)

// Kind is the registry key of this sink.
const Kind = "sheets"

// Minimum grid size of a created worksheet.
const (
	minRows = 100
	minCols = 20
)

func init() {
	publish.Register(Kind, func(ctx context.Context, cfg publish.Config) (publish.Publisher, error) {
		return New(ctx, cfg.Sheets, cfg.Log)
	})
}

// Publisher creates spreadsheets through the Sheets API.
type Publisher struct {
	sheets *gsheets.Service
	drive  *drive.Service
	cfg    publish.SheetsConfig
	log    logrus.FieldLogger
}

// New connects to the Sheets (and, for sharing, Drive) APIs. Extra options
// are appended after the credentials file option.
func New(ctx context.Context, cfg publish.SheetsConfig, log logrus.FieldLogger, opts ...option.ClientOption) (*Publisher, error) {
	var all []option.ClientOption
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	all = append(all, opts...)

	ss, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets: connect: %w", err)
	}
	p := &Publisher{sheets: ss, cfg: cfg, log: log.WithField("sink", Kind)}
	if cfg.ShareAnyone {
		ds, err := drive.NewService(ctx, all...)
		if err != nil {
			return nil, fmt.Errorf("sheets: connect drive: %w", err)
		}
		p.drive = ds
	}
	return p, nil
}

// Close implements publish.Publisher.
func (p *Publisher) Close() error { return nil }

// Publish creates the spreadsheet, fills every tab and optionally shares it.
func (p *Publisher) Publish(ctx context.Context, r publish.Report) (publish.Receipt, error) {
	tabs := publish.Tabs(r)

	spec := &gsheets.Spreadsheet{
		Properties: &gsheets.SpreadsheetProperties{Title: r.Title},
	}
	for _, tab := range tabs {
		grid := &gsheets.GridProperties{
			RowCount:    int64(max(len(tab.Grid), minRows)),
			ColumnCount: int64(max(tab.Width(), minCols)),
		}
		if tab.HasHeader {
			grid.FrozenRowCount = 1
		}
		spec.Sheets = append(spec.Sheets, &gsheets.Sheet{
			Properties: &gsheets.SheetProperties{Title: tab.Name, GridProperties: grid},
		})
	}

	created, err := p.sheets.Spreadsheets.Create(spec).Context(ctx).Do()
	if err != nil {
		return publish.Receipt{}, fmt.Errorf("sheets: create %q: %w", r.Title, err)
	}

	data := make([]*gsheets.ValueRange, 0, len(tabs))
	for _, tab := range tabs {
		if tab.Width() == 0 {
			continue
		}
		data = append(data, &gsheets.ValueRange{
			Range:  quoteSheet(tab.Name) + "!" + publish.A1Range(tab.Width(), len(tab.Grid)),
			Values: tab.Grid,
		})
	}
	if _, err := p.sheets.Spreadsheets.Values.BatchUpdate(created.SpreadsheetId, &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do(); err != nil {
		return publish.Receipt{}, fmt.Errorf("sheets: write values to %s (%s): %w", created.SpreadsheetId, created.SpreadsheetUrl, err)
	}

	if reqs := formatRequests(created, tabs); len(reqs) > 0 {
		if _, err := p.sheets.Spreadsheets.BatchUpdate(created.SpreadsheetId, &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: reqs,
		}).Context(ctx).Do(); err != nil {
			p.log.WithError(err).Warn("Header formatting failed")
		}
	}

	if p.drive != nil {
		if _, err := p.drive.Permissions.Create(created.SpreadsheetId, &drive.Permission{
			Type: "anyone",
			Role: "reader",
		}).Context(ctx).Do(); err != nil {
			return publish.Receipt{}, fmt.Errorf("sheets: share %s (%s): %w", created.SpreadsheetId, created.SpreadsheetUrl, err)
		}
	}

	return publish.NewReceipt(Kind, created.SpreadsheetUrl, created.SpreadsheetId, r, len(tabs)), nil
}

// formatRequests styles the emphasized rows of every tab, matching tabs to
// the created sheets by title.
func formatRequests(created *gsheets.Spreadsheet, tabs []publish.Tab) []*gsheets.Request {
	ids := make(map[string]int64, len(created.Sheets))
	for _, s := range created.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	var reqs []*gsheets.Request
	for _, tab := range tabs {
		id, ok := ids[tab.Name]
		w := tab.Width()
		if !ok || w == 0 {
			continue
		}
		format := &gsheets.CellFormat{
			BackgroundColor:     hexColor(tab.Color),
			TextFormat:          &gsheets.TextFormat{Bold: true},
			HorizontalAlignment: "CENTER",
		}
		if tab.LightText {
			format.TextFormat.ForegroundColor = &gsheets.Color{Red: 1, Green: 1, Blue: 1}
		}
		for _, row := range tab.Emphasis {
			reqs = append(reqs, &gsheets.Request{RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:          id,
					StartRowIndex:    int64(row),
					EndRowIndex:      int64(row + 1),
					StartColumnIndex: 0,
					EndColumnIndex:   int64(w),
					ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
				},
				Cell:   &gsheets.CellData{UserEnteredFormat: format},
				Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
			}})
		}
	}
	return reqs
}

// hexColor parses #rrggbb into a Sheets colour. Malformed input gives white.
func hexColor(hex string) *gsheets.Color {
	if len(hex) != 7 || hex[0] != '#' {
		return &gsheets.Color{Red: 1, Green: 1, Blue: 1}
	}
	ch := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 1
		}
		return float64(v) / 255
	}
	return &gsheets.Color{Red: ch(hex[1:3]), Green: ch(hex[3:5]), Blue: ch(hex[5:7])}
}

// quoteSheet quotes a sheet title for A1 notation.
func quoteSheet(name string) string {
	return "'" + name + "'"
}
