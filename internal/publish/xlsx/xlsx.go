// Package xlsx writes the report as an .xlsx workbook with one worksheet per
// tab.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"reportmerge/internal/publish"
)

// Kind is the registry key of this sink.
const Kind = "xlsx"

func init() {
	publish.Register(Kind, func(_ context.Context, cfg publish.Config) (publish.Publisher, error) {
		return New(cfg.XLSX, cfg.Log), nil
	})
}

// Publisher writes workbooks to disk.
type Publisher struct {
	cfg publish.XLSXConfig
	log logrus.FieldLogger
}

// New returns a Publisher. An empty Dir means the working directory.
func New(cfg publish.XLSXConfig, log logrus.FieldLogger) *Publisher {
	return &Publisher{cfg: cfg, log: log.WithField("sink", Kind)}
}

// Path returns the file a report is written to.
func (p *Publisher) Path(r publish.Report) string {
	if p.cfg.Path != "" {
		return p.cfg.Path
	}
	return filepath.Join(p.cfg.Dir, safeName(r.Title)+".xlsx")
}

// Publish writes the workbook.
func (p *Publisher) Publish(ctx context.Context, r publish.Report) (publish.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return publish.Receipt{}, err
	}
	f, err := Build(r)
	if err != nil {
		return publish.Receipt{}, err
	}
	defer f.Close()

	path := p.Path(r)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return publish.Receipt{}, fmt.Errorf("xlsx: create %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return publish.Receipt{}, fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	p.log.WithField("path", path).Debug("Wrote workbook")
	return publish.NewReceipt(Kind, path, r.Fingerprint(), r, len(f.GetSheetList())), nil
}

// Close implements publish.Publisher.
func (p *Publisher) Close() error { return nil }

// Build renders every tab of r into a new workbook. The caller closes it.
func Build(r publish.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	tabs := publish.Tabs(r)
	for i, tab := range tabs {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", tab.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(tab.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("xlsx: add sheet %s: %w", tab.Name, err)
		}
		if err := writeTab(f, tab); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTab(f *excelize.File, tab publish.Tab) error {
	for i, row := range tab.Grid {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("xlsx: %s: %w", tab.Name, err)
		}
		r := row
		if err := f.SetSheetRow(tab.Name, cell, &r); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", tab.Name, i+1, err)
		}
	}

	font := &excelize.Font{Bold: true}
	if tab.LightText {
		font.Color = "#FFFFFF"
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      font,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{tab.Color}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("xlsx: %s style: %w", tab.Name, err)
	}
	width := tab.Width()
	if width == 0 {
		return nil
	}
	for _, r := range tab.Emphasis {
		from, _ := excelize.CoordinatesToCellName(1, r+1)
		to, _ := excelize.CoordinatesToCellName(width, r+1)
		if err := f.SetCellStyle(tab.Name, from, to, style); err != nil {
			return fmt.Errorf("xlsx: %s style: %w", tab.Name, err)
		}
	}
	if tab.HasHeader {
		if err := f.SetPanes(tab.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("xlsx: %s freeze: %w", tab.Name, err)
		}
	}
	return nil
}

// safeName keeps letters, digits, '-' and '_' of a title.
func safeName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, title)
	if name == "" {
		return "report"
	}
	return name
}
