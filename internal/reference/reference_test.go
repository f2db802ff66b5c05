package reference

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleCSV = `Identifiant de l'élément;Nom base français;Unité français;Total poste non décomposé;Nom attribut français
1001;Avion;kgCO2e/passager.km;0,23;court courrier
1002;Electricité;kgCO2e/kWh;0.1;mix moyen
2001;Bus;kgCO2e/passager.km;0.11;curated bus
1003;Métro;kgCO2e/passager.km;  ;
`

const fullCSV = `Identifiant de l'élément,Nom base français,Unité français,Total poste non décomposé,Nom attribut français,Type Ligne
2001,Bus,kgCO2e/passager.km,0.146,upstream bus,Elément
2002,Bus,kgCO2e/passager.km,0.2,autre bus,Elément
3001,Smartphone,kgCO2e/appareil,32,,Elément
4001,Fromage,kgCO2e/kg,5.4,,Elément
9001,Avion,kgCO2e/passager.km,0.5,not included,Elément
3001,Smartphone,kgCO2e/appareil,40,doublon,Elément
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		SamplePath:      writeFile(t, "basecarbone_sample.csv", sampleCSV),
		SampleDelimiter: ';',
		FullPath:        writeFile(t, "basecarbone-v17-fr.csv", fullCSV),
		FullDelimiter:   ',',
		Inclusions:      []string{"Bus", "Smartphone", "Fromage"},
	}
}

func TestReadSource(t *testing.T) {
	src, err := ReadSource(strings.NewReader(sampleCSV), ';', EncodingUTF8)
	require.NoError(t, err)

	assert.Equal(t, Columns, src.Header)
	require.Len(t, src.Records, 4)

	v, ok := src.Records[0].Get(ColFactor)
	assert.True(t, ok)
	assert.Equal(t, "0,23", v)

	// Whitespace-only and empty cells are missing.
	_, ok = src.Records[3].Get(ColFactor)
	assert.False(t, ok)
	_, ok = src.Records[3].Get(ColAttribute)
	assert.False(t, ok)

	assert.Equal(t, []int{2, 3, 4, 5}, src.Lines)
}

func TestReadSource_EdgeCases(t *testing.T) {
	t.Run("utf-8 BOM stripped from header", func(t *testing.T) {
		src, err := ReadSource(strings.NewReader("\ufeffa;b\n1;2\n"), ';', EncodingUTF8)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, src.Header)
	})

	t.Run("short rows padded, long rows truncated", func(t *testing.T) {
		src, err := ReadSource(strings.NewReader("a;b;c\n1\n1;2;3;4\n"), ';', EncodingUTF8)
		require.NoError(t, err)
		require.Len(t, src.Records, 2)
		assert.Equal(t, Record{"a": "1"}, src.Records[0])
		assert.Equal(t, Record{"a": "1", "b": "2", "c": "3"}, src.Records[1])
	})

	t.Run("all-missing lines skipped", func(t *testing.T) {
		src, err := ReadSource(strings.NewReader("a;b\n;\n 1 ;2\n"), ';', EncodingUTF8)
		require.NoError(t, err)
		require.Len(t, src.Records, 1)
		assert.Equal(t, Record{"a": "1", "b": "2"}, src.Records[0])
	})

	t.Run("wrong delimiter collapses columns", func(t *testing.T) {
		src, err := ReadSource(strings.NewReader(sampleCSV), ',', EncodingUTF8)
		require.NoError(t, err)
		assert.Len(t, src.MissingColumns(Columns), len(Columns))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadSource(strings.NewReader(""), ';', EncodingUTF8)
		require.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("bad quoting is an error", func(t *testing.T) {
		_, err := ReadSource(strings.NewReader("a;b\n\"unterminated;2\n"), ';', EncodingUTF8)
		require.Error(t, err)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := ReadSource(strings.NewReader("a\n"), ';', "ebcdic")
		require.ErrorIs(t, err, ErrUnknownEncoding)
	})
}

func TestReadSource_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Nom base français;Unité français\nTélévision;kgCO2e/appareil\n")
	require.NoError(t, err)

	src, err := ReadSource(strings.NewReader(encoded), ';', EncodingWindows1252)
	require.NoError(t, err)
	require.Len(t, src.Records, 1)
	name, _ := src.Records[0].Get(ColName)
	assert.Equal(t, "Télévision", name)
}

func TestLoadSource_MissingFile(t *testing.T) {
	_, err := LoadSource(filepath.Join(t.TempDir(), "absent.csv"), ';', EncodingUTF8)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild(t *testing.T) {
	table, err := Build(context.Background(), testOptions(t))
	require.NoError(t, err)

	rows := table.Rows()
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.ElementID+"/"+r.Name)
	}
	// Curated rows first, then allowed upstream rows; duplicates dropped.
	assert.Equal(t, []string{
		"1001/Avion", "1002/Electricité", "2001/Bus", "1003/Métro",
		"2002/Bus", "3001/Smartphone", "4001/Fromage",
	}, names)

	bus, ok := table.Lookup("Bus")
	require.True(t, ok)
	assert.Equal(t, "curated bus", bus.Attribute, "curated row wins over upstream duplicate")
	assert.InDelta(t, 0.11, bus.Factor.Value, 1e-12)

	avion, ok := table.Lookup("Avion")
	require.True(t, ok)
	assert.InDelta(t, 0.23, avion.Factor.Value, 1e-12, "comma decimal separator")

	phone, ok := table.Lookup("Smartphone")
	require.True(t, ok)
	assert.InDelta(t, 32.0, phone.Factor.Value, 1e-12, "first upstream occurrence kept")

	metro, ok := table.Lookup("Métro")
	require.True(t, ok)
	assert.False(t, metro.Factor.Valid)

	_, ok = table.Lookup("Voiture particulière")
	assert.False(t, ok)
}

func TestBuild_NoDuplicateKeys(t *testing.T) {
	opts := testOptions(t)
	// Every upstream item allowed, including keys already curated.
	opts.Inclusions = []string{"Bus", "Smartphone", "Fromage", "Avion"}

	table, err := Build(context.Background(), opts)
	require.NoError(t, err)

	seen := map[Key]bool{}
	for _, r := range table.Rows() {
		assert.False(t, seen[r.Key()], "duplicate key %+v", r.Key())
		seen[r.Key()] = true
	}
	// 9001/Avion has a different identifier than the curated 1001/Avion.
	assert.True(t, seen[Key{ElementID: "9001", Name: "Avion"}])
	avion, _ := table.Lookup("Avion")
	assert.Equal(t, "1001", avion.ElementID)
}

func TestBuild_MissingKeysDeduplicateTogether(t *testing.T) {
	sample, err := ReadSource(strings.NewReader("Nom base français;Total poste non décomposé\nBus;1\n"), ';', "")
	require.NoError(t, err)
	full, err := ReadSource(strings.NewReader("Nom base français,Total poste non décomposé\nBus,2\n"), ',', "")
	require.NoError(t, err)

	table, err := Enrich(context.Background(), sample, full, []string{"Bus"})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	bus, _ := table.Lookup("Bus")
	assert.InDelta(t, 1.0, bus.Factor.Value, 1e-12)
}

func TestBuild_Failures(t *testing.T) {
	t.Run("missing sample", func(t *testing.T) {
		opts := testOptions(t)
		opts.SamplePath = filepath.Join(t.TempDir(), "nope.csv")
		_, err := Build(context.Background(), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading curated sample")
	})

	t.Run("missing full dataset", func(t *testing.T) {
		opts := testOptions(t)
		opts.FullPath = filepath.Join(t.TempDir(), "nope.csv")
		_, err := Build(context.Background(), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading full dataset")
	})

	t.Run("malformed factor", func(t *testing.T) {
		opts := testOptions(t)
		opts.SamplePath = writeFile(t, "bad.csv",
			"Identifiant de l'élément;Nom base français;Total poste non décomposé\n1;Avion;beaucoup\n")
		_, err := Build(context.Background(), opts)
		require.ErrorIs(t, err, ErrMalformedFactor)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("malformed factor in excluded upstream row is ignored", func(t *testing.T) {
		opts := testOptions(t)
		opts.FullPath = writeFile(t, "full.csv",
			"Nom base français,Total poste non décomposé\nAutre,n/a\nBus,1\n")
		_, err := Build(context.Background(), opts)
		require.NoError(t, err)
	})
}

func TestEnrich_WarnsOnMissingColumns(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	sample, err := ReadSource(strings.NewReader(sampleCSV), ',', "")
	require.NoError(t, err)
	full, err := ReadSource(strings.NewReader(fullCSV), ',', "")
	require.NoError(t, err)

	_, err = Enrich(ctx, sample, full, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "missing_columns")
}

func TestParseFactor(t *testing.T) {
	tests := []struct {
		in      string
		want    Factor
		wantErr bool
	}{
		{in: "0.227", want: Factor{Value: 0.227, Valid: true}},
		{in: "0,227", want: Factor{Value: 0.227, Valid: true}},
		{in: "1 234,5", want: Factor{Value: 1234.5, Valid: true}},
		{in: "-3", want: Factor{Value: -3, Valid: true}},
		{in: "", want: Factor{}},
		{in: "   ", want: Factor{}},
		{in: "abc", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "-infinity", wantErr: true},
		{in: "1e400", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFactor(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedFactor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Valid, got.Valid)
			assert.InDelta(t, tt.want.Value, got.Value, 1e-12)
		})
	}
}

func TestSaveAndLoadCombined(t *testing.T) {
	table, err := Build(context.Background(), testOptions(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "basecarbone_combined.csv")
	require.NoError(t, Save(table, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, strings.Join(Columns, ";"), lines[0])
	assert.Equal(t, "1001;Avion;kgCO2e/passager.km;0.23;court courrier", lines[1])
	assert.Equal(t, "1003;Métro;kgCO2e/passager.km;;", lines[4])
	assert.Len(t, lines, table.Len()+1)

	reloaded, err := LoadCombined(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, table.Rows(), reloaded.Rows())
}

func TestSave_UnwritablePath(t *testing.T) {
	err := Save(NewTable(nil), filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
}

func TestTable_LookupFirstMatch(t *testing.T) {
	table := NewTable([]Row{
		{ElementID: "1", Name: "Bus", Factor: Factor{Value: 1, Valid: true}},
		{ElementID: "2", Name: "Bus", Factor: Factor{Value: 2, Valid: true}},
		{ElementID: "3"},
	})
	got, ok := table.Lookup("Bus")
	require.True(t, ok)
	assert.Equal(t, "1", got.ElementID)

	_, ok = table.Lookup("")
	assert.False(t, ok, "rows without a name are never matched")
}
