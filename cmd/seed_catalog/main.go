// seed_catalog convierte el export CSV de productos del sistema de inventario
// en el catálogo YAML que lee CATALOG_SOURCE=file.
//
// Uso: go run ./cmd/seed_catalog productos.csv [catalog.yaml]
// Columnas reconocidas (en cualquier orden): id, company_id, name, sku, barcode,
// category, unit_price, stock_quantity. Solo id y name son obligatorias.
// Los exports de Excel en Windows-1252 se convierten a UTF-8.
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/infrastructure/catalogfile"
	"github.com/jhoicas/invoice-entry/pkg/money"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog productos.csv [catalog.yaml]")
		os.Exit(2)
	}
	outPath := "catalog.yaml"
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	products, skipped, err := parseCSV(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Procesar CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := catalogfile.WriteYAML(out, products); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir YAML: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d productos, %d filas omitidas\n", outPath, len(products), skipped)
}

// parseCSV lee el export. Las filas sin id o sin nombre se omiten y se cuentan en skipped.
func parseCSV(raw []byte) (products []entity.Product, skipped int, err error) {
	var in io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		in = transform.NewReader(in, charmap.Windows1252.NewDecoder())
	}
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("leer encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"id", "name"} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("falta la columna %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	seen := make(map[string]struct{})
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("leer fila: %w", err)
		}
		id, name := field(row, "id"), field(row, "name")
		if id == "" || name == "" {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}

		price, _ := money.ParseNonNegative(field(row, "unit_price"))
		stock, _ := money.ParseLenient(field(row, "stock_quantity"))
		products = append(products, entity.Product{
			ID:            id,
			CompanyID:     field(row, "company_id"),
			Name:          name,
			SKU:           entity.OptNonEmpty(field(row, "sku")),
			Barcode:       entity.OptNonEmpty(field(row, "barcode")),
			Category:      entity.OptNonEmpty(field(row, "category")),
			UnitPrice:     price,
			StockQuantity: stock,
		})
	}
	return products, skipped, nil
}
