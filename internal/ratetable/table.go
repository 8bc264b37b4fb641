// Package ratetable models the regulator's published active-rate table: a
// rectangular matrix of credit products (rows, grouped by category) by banks
// (columns), where each cell is an annual percentage or an unavailable
// sentinel. The engine is agnostic to where a rate came from; this package is
// the collaborator that supplies one.
package ratetable

import (
	"errors"
	"fmt"
	"sort"
)

// Category is a credit-product category, matching the regulator's grouping.
type Category string

const (
	CategoryCorporate      Category = "corporate"
	CategoryLargeBusiness  Category = "largeBusiness"
	CategoryMediumBusiness Category = "mediumBusiness"
	CategorySmallBusiness  Category = "smallBusiness"
	CategoryMicroBusiness  Category = "microBusiness"
	CategoryConsumer       Category = "consumer"
	CategoryMortgage       Category = "mortgage"
)

// categoryHeaders maps the scraped section-header text to a category. The
// mapping is validated against the actual row labels at load time rather than
// relying on fixed row offsets.
var categoryHeaders = map[string]Category{
	"Corporativos":      CategoryCorporate,
	"Grandes Empresas":  CategoryLargeBusiness,
	"Medianas Empresas": CategoryMediumBusiness,
	"Pequeñas Empresas": CategorySmallBusiness,
	"Microempresas":     CategoryMicroBusiness,
	"Consumo":           CategoryConsumer,
	"Hipotecarios":      CategoryMortgage,
}

// Lookup errors.
var (
	ErrUnknownBank    = errors.New("bank not present in rate table")
	ErrUnknownProduct = errors.New("product not present in rate table")
	ErrNoRates        = errors.New("no rates available for product")
)

// UnavailableError reports a cell the regulator publishes as unavailable.
type UnavailableError struct {
	Bank    string
	Product string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("rate unavailable for %s / %s", e.Bank, e.Product)
}

// Cell is one rate-table entry.
type Cell struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// ProductRow is one product's rates across all banks, in bank column order.
type ProductRow struct {
	Category Category `json:"category"`
	Product  string   `json:"product"`
	Cells    []Cell   `json:"cells"`
}

// Table is a fully-materialized rate table.
type Table struct {
	Banks    []string     `json:"banks"`
	Products []ProductRow `json:"products"`
}

// BankIndex returns the column index for a bank name.
func (t *Table) BankIndex(bank string) (int, error) {
	for i, b := range t.Banks {
		if b == bank {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownBank, bank)
}

func (t *Table) productRow(category Category, product string) (*ProductRow, error) {
	for i := range t.Products {
		if t.Products[i].Category == category && t.Products[i].Product == product {
			return &t.Products[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s / %s", ErrUnknownProduct, category, product)
}

// Rate returns the published annual percentage for one bank and product.
func (t *Table) Rate(bank string, category Category, product string) (float64, error) {
	col, err := t.BankIndex(bank)
	if err != nil {
		return 0, err
	}
	row, err := t.productRow(category, product)
	if err != nil {
		return 0, err
	}
	cell := row.Cells[col]
	if !cell.Available {
		return 0, &UnavailableError{Bank: bank, Product: product}
	}
	return cell.Value, nil
}

// Best returns the bank with the lowest available rate for a product.
func (t *Table) Best(category Category, product string) (string, float64, error) {
	return t.pick(category, product, func(candidate, current float64) bool {
		return candidate < current
	})
}

// Worst returns the bank with the highest available rate for a product.
func (t *Table) Worst(category Category, product string) (string, float64, error) {
	return t.pick(category, product, func(candidate, current float64) bool {
		return candidate > current
	})
}

func (t *Table) pick(category Category, product string, better func(candidate, current float64) bool) (string, float64, error) {
	row, err := t.productRow(category, product)
	if err != nil {
		return "", 0, err
	}

	bank := ""
	rate := 0.0
	for i, cell := range row.Cells {
		if !cell.Available {
			continue
		}
		if bank == "" || better(cell.Value, rate) {
			bank = t.Banks[i]
			rate = cell.Value
		}
	}
	if bank == "" {
		return "", 0, fmt.Errorf("%w: %s / %s", ErrNoRates, category, product)
	}
	return bank, rate, nil
}

// Average returns the mean of the available rates for a product.
func (t *Table) Average(category Category, product string) (float64, error) {
	row, err := t.productRow(category, product)
	if err != nil {
		return 0, err
	}

	sum, n := 0.0, 0
	for _, cell := range row.Cells {
		if cell.Available {
			sum += cell.Value
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s / %s", ErrNoRates, category, product)
	}
	return sum / float64(n), nil
}

// ProductsIn lists the product names of one category, sorted.
func (t *Table) ProductsIn(category Category) []string {
	var products []string
	for _, row := range t.Products {
		if row.Category == category {
			products = append(products, row.Product)
		}
	}
	sort.Strings(products)
	return products
}
