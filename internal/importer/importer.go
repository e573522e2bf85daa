// Package importer loads shop catalogs from CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vendorhub/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV rows and inserts/updates products for a
// shop. A product row carries a key; rows without a key are image
// continuation rows and attach to the preceding product.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	shopID      string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, shopID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		shopID:      shopID,
	}
}

type csvRow struct {
	Key              string
	SKU              string
	Name             string
	Desc             string
	Cents            int64
	WeeklyCents      *int64
	MonthlyCents     *int64
	YearlyCents      *int64
	Currency         string
	RequiresShipping bool
	Active           bool
	ImageURLs        []string
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Name == "" || row.Cents <= 0 || row.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", row.Key)
	}

	attrs := map[string]interface{}{}
	if len(row.ImageURLs) > 0 {
		attrs["images"] = row.ImageURLs
	}

	p := domain.Product{
		ShopID:            i.shopID,
		Key:               row.Key,
		SKU:               row.SKU,
		Name:              row.Name,
		Description:       row.Desc,
		PriceCents:        row.Cents,
		WeeklyPriceCents:  row.WeeklyCents,
		MonthlyPriceCents: row.MonthlyCents,
		YearlyPriceCents:  row.YearlyCents,
		Currency:          strings.ToLower(row.Currency),
		RequiresShipping:  row.RequiresShipping,
		Active:            row.Active,
		Attributes:        attrs,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "image_url")
	if key == "" && imageURL == "" {
		return nil
	}

	row := &csvRow{
		Key:          key,
		SKU:          pick(record, index, "sku"),
		Name:         pick(record, index, "name"),
		Desc:         pick(record, index, "description"),
		Cents:        parseCents(pick(record, index, "price_cents")),
		WeeklyCents:  parseOptionalCents(pick(record, index, "weekly_price_cents")),
		MonthlyCents: parseOptionalCents(pick(record, index, "monthly_price_cents")),
		YearlyCents:  parseOptionalCents(pick(record, index, "yearly_price_cents")),
		Currency:     pick(record, index, "currency"),
	}
	row.RequiresShipping = parseBool(pick(record, index, "requires_shipping"), true)
	row.Active = parseBool(pick(record, index, "active"), true)
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}
	return row
}

func parseCents(s string) int64 {
	cents, _ := strconv.ParseInt(s, 10, 64)
	return cents
}

func parseOptionalCents(s string) *int64 {
	if s == "" {
		return nil
	}
	cents, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &cents
}

func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
