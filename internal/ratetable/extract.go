package ratetable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// unavailableSentinel is the marker the regulator publishes for a bank that
// does not offer a product.
const unavailableSentinel = "-"

// Extract parses the regulator's published HTML rate table. The first row
// carries the bank names; each category is introduced by a full-width header
// row whose label must match a known category, and the rows below it carry one
// product each with one rate cell per bank.
func Extract(htmlDoc []byte, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(htmlDoc); err != nil {
		return nil, fmt.Errorf("failed to parse rate table document: %w", err)
	}

	rows := doc.FindElements("//tr")
	if len(rows) == 0 {
		return nil, fmt.Errorf("rate table document contains no rows")
	}

	banks := cellTexts(rows[0])
	if len(banks) < 2 {
		return nil, fmt.Errorf("rate table header has %d cells, need a label column plus at least one bank", len(banks))
	}
	banks = banks[1:]

	table := &Table{Banks: banks}
	current := Category("")

	for i, tr := range rows[1:] {
		cells := cellTexts(tr)
		if len(cells) == 0 {
			continue
		}

		if isCategoryRow(cells, len(banks)) {
			category, ok := categoryHeaders[cells[0]]
			if !ok {
				return nil, fmt.Errorf("row %d: unrecognized category header %q", i+2, cells[0])
			}
			current = category
			continue
		}

		if current == "" {
			return nil, fmt.Errorf("row %d: product %q appears before any category header", i+2, cells[0])
		}
		if len(cells) != len(banks)+1 {
			return nil, fmt.Errorf("row %d: product %q has %d rate cells, want %d", i+2, cells[0], len(cells)-1, len(banks))
		}

		row := ProductRow{
			Category: current,
			Product:  cells[0],
			Cells:    make([]Cell, 0, len(banks)),
		}
		for col, text := range cells[1:] {
			cell, err := parseCell(text)
			if err != nil {
				return nil, fmt.Errorf("row %d, bank %s: %w", i+2, banks[col], err)
			}
			row.Cells = append(row.Cells, cell)
		}
		table.Products = append(table.Products, row)
	}

	if len(table.Products) == 0 {
		return nil, fmt.Errorf("rate table document contains no product rows")
	}

	logger.Debug("rate table extracted",
		zap.String("op", "ratetable.Extract"),
		zap.Int("banks", len(table.Banks)),
		zap.Int("products", len(table.Products)),
	)
	return table, nil
}

// isCategoryRow detects a section-header row: a single spanning cell, or a
// label cell followed only by empty cells.
func isCategoryRow(cells []string, bankCount int) bool {
	if len(cells) == 1 {
		return true
	}
	if len(cells) != bankCount+1 {
		return false
	}
	for _, text := range cells[1:] {
		if text != "" {
			return false
		}
	}
	return true
}

func parseCell(text string) (Cell, error) {
	if text == "" || text == unavailableSentinel {
		return Cell{}, nil
	}
	// Rates are published with a comma decimal separator.
	normalized := strings.ReplaceAll(text, ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return Cell{}, fmt.Errorf("unparseable rate %q", text)
	}
	if value < 0 {
		return Cell{}, fmt.Errorf("negative rate %q", text)
	}
	return Cell{Value: value, Available: true}, nil
}

func cellTexts(tr *etree.Element) []string {
	var texts []string
	for _, child := range tr.ChildElements() {
		switch child.Tag {
		case "td", "th":
			texts = append(texts, strings.TrimSpace(child.Text()))
		}
	}
	return texts
}
