package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	raw := []byte("\ufeffID,Name,SKU,Barcode,Unit_Price,Stock_Quantity\n" +
		"1,Pen,PEN-01,0111,9.99,10\n" +
		"2,Bolsa,,,abc,\n" +
		",Sin id,,,1,1\n" +
		"1,Repetido,,,1,1\n")

	products, skipped, err := parseCSV(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, products, 2)

	assert.Equal(t, "0111", *products[0].Barcode)
	assert.True(t, products[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))
	assert.Nil(t, products[1].SKU)
	assert.True(t, products[1].UnitPrice.IsZero())
	assert.True(t, products[1].OutOfStock())
}

func TestParseCSV_Windows1252(t *testing.T) {
	// "Bolígrafo" con í = 0xED en Windows-1252
	raw := append([]byte("id,name\n1,Bol"), 0xED, 'g', 'r', 'a', 'f', 'o', '\n')

	products, _, err := parseCSV(raw)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Bolígrafo", products[0].Name)
}

func TestParseCSV_SinColumnaObligatoria(t *testing.T) {
	_, _, err := parseCSV([]byte("sku,barcode\nA,1\n"))
	assert.ErrorContains(t, err, `"id"`)
}
