package source_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stackvity/json2csv/pkg/converter/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carsJSON = `[
  {"carModel": "Audi", "price": 0, "color": "blue"},
  {"carModel": "BMW", "price": 15000, "color": "red"},
  {"price": 20000, "carModel": "Mercedes", "color": "yellow"}
]`

func TestDecode_JSONKeepsKeyOrder(t *testing.T) {
	doc, err := source.Decode(strings.NewReader(carsJSON), source.FormatJSON)
	require.NoError(t, err)

	items, ok := doc.([]any)
	require.True(t, ok, "expected a slice, got %T", doc)
	require.Len(t, items, 3)

	first := items[0].(*converter.Record)
	assert.Equal(t, []string{"carModel", "price", "color"}, first.Keys())
	third := items[2].(*converter.Record)
	assert.Equal(t, []string{"price", "carModel", "color"}, third.Keys())

	price, _ := first.Get("price")
	assert.Equal(t, json.Number("0"), price)
}

func TestDecode_JSONToCSV(t *testing.T) {
	doc, err := source.Decode(strings.NewReader(carsJSON), source.FormatAuto)
	require.NoError(t, err)

	csv, err := converter.Convert(converter.Options{Data: doc})
	require.NoError(t, err)
	assert.Equal(t, "\"carModel\",\"price\",\"color\"\n"+
		"\"Audi\",\"0\",\"blue\"\n"+
		"\"BMW\",\"15000\",\"red\"\n"+
		"\"Mercedes\",\"20000\",\"yellow\"", csv)
}

func TestDecode_JSONScalarsAndNesting(t *testing.T) {
	doc, err := source.Decode(strings.NewReader(`{"a":null,"b":true,"c":1.50,"d":{"e":[1,{"f":"g"}]}}`), source.FormatJSON)
	require.NoError(t, err)
	rec := doc.(*converter.Record)
	assert.Equal(t, []string{"a", "b", "c", "d"}, rec.Keys())

	a, ok := rec.Get("a")
	assert.True(t, ok)
	assert.Nil(t, a)
	b, _ := rec.Get("b")
	assert.Equal(t, true, b)
	c, _ := rec.Get("c")
	assert.Equal(t, json.Number("1.50"), c)

	csv, err := converter.Convert(converter.Options{Data: doc, Fields: []string{"c", "d.e.1.f"}, Nested: true})
	require.NoError(t, err)
	assert.Equal(t, "\"c\",\"d.e.1.f\"\n\"1.5\",\"g\"", csv)
}

func TestDecode_NumbersRenderAlikeAcrossFormats(t *testing.T) {
	jsonDoc, err := source.Decode(strings.NewReader(`[{"a":1.50,"b":1e3,"c":42}]`), source.FormatJSON)
	require.NoError(t, err)
	yamlDoc, err := source.Decode(strings.NewReader("- a: 1.50\n  b: 1.0e+3\n  c: 42\n"), source.FormatYAML)
	require.NoError(t, err)

	fromJSON, err := converter.Convert(converter.Options{Data: jsonDoc})
	require.NoError(t, err)
	fromYAML, err := converter.Convert(converter.Options{Data: yamlDoc})
	require.NoError(t, err)

	assert.Equal(t, "\"a\",\"b\",\"c\"\n\"1.5\",\"1000\",\"42\"", fromJSON)
	assert.Equal(t, fromJSON, fromYAML)
}

func TestDecode_JSONWithBOM(t *testing.T) {
	doc, err := source.Decode(strings.NewReader("\ufeff[{\"a\":1}]"), source.FormatAuto)
	require.NoError(t, err)
	assert.Len(t, doc.([]any), 1)
}

func TestDecode_Empty(t *testing.T) {
	for _, format := range []source.Format{source.FormatJSON, source.FormatYAML, source.FormatAuto} {
		doc, err := source.Decode(strings.NewReader("  \n"), format)
		require.NoError(t, err, "format %s", format)
		assert.Nil(t, doc, "format %s", format)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	tests := []string{
		`[{"a":1}`,
		`{"a":}`,
		`[1] [2]`,
		`{"a":1}}`,
	}
	for _, input := range tests {
		_, err := source.Decode(strings.NewReader(input), source.FormatJSON)
		assert.ErrorIs(t, err, source.ErrDecode, "input %q", input)
	}
}

func TestDecode_YAMLKeepsKeyOrder(t *testing.T) {
	input := `
- carModel: Audi
  price: 0
  color: blue
  released: 2015-01-02
- carModel: BMW
  price: 1.5
  color: ~
  extras: [sunroof, "heated seats"]
`
	doc, err := source.Decode(strings.NewReader(input), source.FormatYAML)
	require.NoError(t, err)
	items := doc.([]any)
	require.Len(t, items, 2)

	first := items[0].(*converter.Record)
	assert.Equal(t, []string{"carModel", "price", "color", "released"}, first.Keys())
	released, _ := first.Get("released")
	assert.Equal(t, "2015-01-02", released)

	second := items[1].(*converter.Record)
	price, _ := second.Get("price")
	assert.Equal(t, 1.5, price)
	color, ok := second.Get("color")
	assert.True(t, ok)
	assert.Nil(t, color)

	csv, err := converter.Convert(converter.Options{Data: doc, Fields: []string{"carModel", "price", "color", "extras"}, DefaultValue: "NULL"})
	require.NoError(t, err)
	assert.Equal(t, "\"carModel\",\"price\",\"color\",\"extras\"\n"+
		"\"Audi\",\"0\",\"blue\",\"NULL\"\n"+
		"\"BMW\",\"1.5\",\"NULL\",\"[\"\"sunroof\"\",\"\"heated seats\"\"]\"", csv)
}

func TestDecode_YAMLAnchorsAndMerge(t *testing.T) {
	input := `
base: &base
  make: Audi
  model: A3
car:
  model: A4
  <<: *base
  year: 2020
alias: *base
`
	doc, err := source.Decode(strings.NewReader(input), source.FormatYAML)
	require.NoError(t, err)
	rec := doc.(*converter.Record)

	carVal, _ := rec.Get("car")
	car := carVal.(*converter.Record)
	assert.Equal(t, []string{"model", "make", "year"}, car.Keys())
	model, _ := car.Get("model")
	assert.Equal(t, "A4", model, "explicit keys win over merged keys")

	aliasVal, _ := rec.Get("alias")
	alias := aliasVal.(*converter.Record)
	assert.Equal(t, []string{"make", "model"}, alias.Keys())
}

func TestDecode_MalformedYAML(t *testing.T) {
	_, err := source.Decode(strings.NewReader("a: [1, 2\nb: c"), source.FormatYAML)
	require.ErrorIs(t, err, source.ErrDecode)
}

func TestDecode_ReadFailure(t *testing.T) {
	_, err := source.Decode(iotest.ErrReader(errors.New("disk gone")), source.FormatJSON)
	require.ErrorIs(t, err, converter.ErrReadFailed)
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := source.Decode(strings.NewReader("{}"), source.Format("xml"))
	require.ErrorIs(t, err, source.ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    source.Format
		wantErr bool
	}{
		{in: "", want: source.FormatAuto},
		{in: "auto", want: source.FormatAuto},
		{in: "JSON", want: source.FormatJSON},
		{in: " yaml ", want: source.FormatYAML},
		{in: "yml", want: source.FormatYAML},
		{in: "Toml", want: source.FormatTOML},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := source.ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, source.ErrUnknownFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, source.FormatYAML, source.DetectFormat("data/cars.yaml"))
	assert.Equal(t, source.FormatYAML, source.DetectFormat("CARS.YML"))
	assert.Equal(t, source.FormatJSON, source.DetectFormat("cars.json"))
	assert.Equal(t, source.FormatTOML, source.DetectFormat("fleet.toml"))
	assert.Equal(t, source.FormatAuto, source.DetectFormat("-"))
	assert.Equal(t, source.FormatAuto, source.DetectFormat("notes.txt"))

	assert.True(t, source.IsSupportedPath("fleet/cars.json"))
	assert.True(t, source.IsSupportedPath("fleet/cars.toml"))
	assert.False(t, source.IsSupportedPath("fleet/README.md"))
}

func TestDecode_TOMLArrayOfTables(t *testing.T) {
	const doc = `
[[cars]]
model = "Audi"
price = 0
color = "blue"

[[cars]]
model = "BMW"
price = 15000
color = "red"
`
	got, err := source.Decode(strings.NewReader(doc), source.FormatTOML)
	require.NoError(t, err)

	items, ok := got.([]any)
	require.True(t, ok, "expected a slice, got %T", got)
	require.Len(t, items, 2)
	first := items[0].(*converter.Record)
	assert.Equal(t, []string{"model", "price", "color"}, first.Keys())
	price, _ := first.Get("price")
	assert.Equal(t, int64(0), price)

	csv, err := converter.Convert(converter.Options{Data: got})
	require.NoError(t, err)
	assert.Equal(t, "\"model\",\"price\",\"color\"\n\"Audi\",\"0\",\"blue\"\n\"BMW\",\"15000\",\"red\"", csv)
}

func TestDecode_TOMLSingleRecordKeepsKeyOrder(t *testing.T) {
	const doc = `
zeta = 1
alpha = "a"

[owner]
name = "Tom"
dob = 1979-05-27
`
	got, err := source.Decode(strings.NewReader(doc), source.FormatTOML)
	require.NoError(t, err)

	rec, ok := got.(*converter.Record)
	require.True(t, ok, "expected a record, got %T", got)
	assert.Equal(t, []string{"zeta", "alpha", "owner"}, rec.Keys())
	owner, _ := rec.Get("owner")
	assert.Equal(t, []string{"name", "dob"}, owner.(*converter.Record).Keys())

	csv, err := converter.Convert(converter.Options{Data: got, Fields: []string{"owner.name", "zeta"}, Nested: true})
	require.NoError(t, err)
	assert.Equal(t, "\"owner.name\",\"zeta\"\n\"Tom\",\"1\"", csv)
}

func TestDecode_TOMLIsNotSniffed(t *testing.T) {
	_, err := source.Decode(strings.NewReader("[owner]\nname = \"Tom\"\n"), source.FormatAuto)
	require.ErrorIs(t, err, source.ErrDecode, "a table header sniffs as JSON and fails")
}

func TestDecode_MalformedTOML(t *testing.T) {
	_, err := source.Decode(strings.NewReader("a = = 1"), source.FormatTOML)
	require.ErrorIs(t, err, source.ErrDecode)
	assert.Contains(t, err.Error(), "toml:")
}

func TestSniff(t *testing.T) {
	assert.Equal(t, source.FormatJSON, source.Sniff([]byte("  \n[1]")))
	assert.Equal(t, source.FormatJSON, source.Sniff([]byte("\ufeff{}")))
	assert.Equal(t, source.FormatYAML, source.Sniff([]byte("a: 1")))
	assert.Equal(t, source.FormatYAML, source.Sniff(nil))
}
