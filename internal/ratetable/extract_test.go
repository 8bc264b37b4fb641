package ratetable

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `
<table>
  <tr><th>Tasa Anual (%)</th><th>BancoA</th><th>BancoB</th><th>BancoC</th></tr>
  <tr><td colspan="4">Consumo</td></tr>
  <tr><td>Prestamo personal</td><td>24,50</td><td>-</td><td>31,00</td></tr>
  <tr><td>Tarjeta de credito</td><td>45,00</td><td>39,90</td><td>52,10</td></tr>
  <tr><td colspan="4">Hipotecarios</td></tr>
  <tr><td>Vivienda</td><td>8,10</td><td>7,95</td><td>8,40</td></tr>
</table>
`

func TestExtract(t *testing.T) {
	table, err := Extract([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if len(table.Banks) != 3 {
		t.Fatalf("got %d banks, expected 3", len(table.Banks))
	}
	if table.Banks[0] != "BancoA" || table.Banks[2] != "BancoC" {
		t.Errorf("unexpected bank columns: %v", table.Banks)
	}
	if len(table.Products) != 3 {
		t.Fatalf("got %d products, expected 3", len(table.Products))
	}

	rate, err := table.Rate("BancoA", CategoryConsumer, "Prestamo personal")
	if err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	if rate != 24.50 {
		t.Errorf("rate = %v, expected 24.50", rate)
	}

	rate, err = table.Rate("BancoB", CategoryMortgage, "Vivienda")
	if err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	if rate != 7.95 {
		t.Errorf("rate = %v, expected 7.95", rate)
	}
}

func TestExtractUnavailableCell(t *testing.T) {
	table, err := Extract([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	_, err = table.Rate("BancoB", CategoryConsumer, "Prestamo personal")
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavailable.Bank != "BancoB" {
		t.Errorf("error names bank %q, expected BancoB", unavailable.Bank)
	}
}

func TestExtractRejectsUnknownCategory(t *testing.T) {
	doc := strings.Replace(sampleDoc, "Consumo", "Prestamos Misteriosos", 1)
	_, err := Extract([]byte(doc), nil)
	if err == nil || !strings.Contains(err.Error(), "unrecognized category header") {
		t.Errorf("expected unrecognized category error, got %v", err)
	}
}

func TestExtractRejectsProductBeforeCategory(t *testing.T) {
	doc := `
<table>
  <tr><th>Tasa Anual (%)</th><th>BancoA</th></tr>
  <tr><td>Prestamo personal</td><td>24,50</td></tr>
</table>
`
	_, err := Extract([]byte(doc), nil)
	if err == nil || !strings.Contains(err.Error(), "before any category header") {
		t.Errorf("expected category ordering error, got %v", err)
	}
}

func TestExtractRejectsRaggedRow(t *testing.T) {
	doc := `
<table>
  <tr><th>Tasa Anual (%)</th><th>BancoA</th><th>BancoB</th></tr>
  <tr><td colspan="3">Consumo</td></tr>
  <tr><td>Prestamo personal</td><td>24,50</td></tr>
</table>
`
	_, err := Extract([]byte(doc), nil)
	if err == nil || !strings.Contains(err.Error(), "rate cells") {
		t.Errorf("expected ragged row error, got %v", err)
	}
}

func TestExtractRejectsUnparseableRate(t *testing.T) {
	doc := strings.Replace(sampleDoc, "24,50", "n/a", 1)
	_, err := Extract([]byte(doc), nil)
	if err == nil || !strings.Contains(err.Error(), "unparseable rate") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	_, err := Extract([]byte("<table></table>"), nil)
	if err == nil {
		t.Error("expected error for a document without rows")
	}
}
