package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carboncalc/internal/config"
	"github.com/rshade/carboncalc/internal/logging"
)

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.Validate())

	tax := cfg.Taxonomy()
	require.Len(t, tax, 4)
	assert.Equal(t, "Transports", tax[0].Name)
	assert.Equal(t,
		[]string{"Avion", "Métro", "RER", "TGV", "Voiture particulière", "Bus"},
		tax[0].Subcategories)
	assert.Equal(t, "Logement", tax[1].Name)
	assert.Equal(t, []string{"Fioul domestique", "Gaz naturel", "Electricité"}, tax[1].Subcategories)
	assert.Equal(t, "Alimentation", tax[2].Name)
	assert.Equal(t,
		[]string{"Repas (végétarien)", "Repas (moyen)", "Viande de boeuf", "Légumes (ou fruits)"},
		tax[2].Subcategories)
	assert.Equal(t, "Électronique", tax[3].Name)
	assert.Equal(t,
		[]string{"Tablette", "Smartphone", "Télévision", "Ordinateur", "Imprimante"},
		tax[3].Subcategories)

	assert.InDelta(t, 10000.0, cfg.Report.BaselineKg, 1e-9)
	assert.Equal(t, "emissions_par_categorie_ameliore.png", cfg.Report.ChartPath)
	assert.Equal(t, 300, cfg.Report.ChartDPI)
	assert.InDelta(t, 0.2, cfg.Calculation.ServingWeightKg, 1e-9)
	assert.Equal(t, ";", cfg.Reference.SampleDelimiter)
	assert.Equal(t, ",", cfg.Reference.FullDelimiter)
	assert.Contains(t, cfg.Reference.Inclusions, "Fromage")
	assert.Len(t, cfg.Reference.Inclusions, 9)
}

func TestNew_EverySubcategoryHasPromptAndRule(t *testing.T) {
	cfg := config.New()
	for _, cat := range cfg.Taxonomy() {
		for _, sub := range cat.Subcategories {
			assert.Contains(t, cfg.Survey.Prompts, sub, "prompt for %s", sub)
			assert.Contains(t, cfg.Calculation.Rules, sub, "rule for %s", sub)
		}
	}
}

func TestNew_ReturnsIndependentCopies(t *testing.T) {
	a := config.New()
	b := config.New()
	a.Survey.Categories[0].Name = "changed"
	assert.Equal(t, "Transports", b.Survey.Categories[0].Name)
}

func TestLoad(t *testing.T) {
	t.Run("no overlay", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Len(t, cfg.Taxonomy(), 4)
	})

	t.Run("overlay applied", func(t *testing.T) {
		path := writeOverlay(t, "logging:\n  level: debug\n  format: json\n")
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv(config.EnvChartPath, "custom.png")
		t.Setenv(config.EnvBaselineKg, "8000")
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "custom.png", cfg.Report.ChartPath)
		assert.InDelta(t, 8000.0, cfg.Report.BaselineKg, 1e-9)
	})

	t.Run("explicit env lookup", func(t *testing.T) {
		lookup := func(key string) (string, bool) {
			if key == config.EnvLogLevel {
				return "error", true
			}
			return "", false
		}
		cfg, err := config.LoadWithEnv("", lookup)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Logging.Level)
	})

	t.Run("partial section overlay explains replacement", func(t *testing.T) {
		path := writeOverlay(t, "report:\n  baseline_kg: 5000\n")
		_, err := config.Load(path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "replaces the built-in one")
		assert.Contains(t, err.Error(), path)
	})

	t.Run("defaults alone carry no overlay hint", func(t *testing.T) {
		lookup := func(key string) (string, bool) {
			if key == config.EnvBaselineKg {
				return "-1", true
			}
			return "", false
		}
		_, err := config.LoadWithEnv("", lookup)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.NotContains(t, err.Error(), "replaces the built-in one")
	})

	t.Run("invalid overlay fails validation", func(t *testing.T) {
		path := writeOverlay(t, "survey:\n  categories: []\n")
		_, err := config.Load(path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestApplyEnv_BadBaseline(t *testing.T) {
	cfg := config.New()
	lookup := func(key string) (string, bool) {
		if key == config.EnvBaselineKg {
			return "lots", true
		}
		return "", false
	}
	err := cfg.ApplyEnv(lookup)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "multi-character delimiter",
			mutate:  func(c *config.Config) { c.Reference.SampleDelimiter = ";;" },
			wantErr: "reference.sample_delimiter",
		},
		{
			name:    "quote delimiter",
			mutate:  func(c *config.Config) { c.Reference.FullDelimiter = `"` },
			wantErr: "reference.full_delimiter",
		},
		{
			name:    "missing combined path",
			mutate:  func(c *config.Config) { c.Reference.CombinedPath = "" },
			wantErr: "combined_path",
		},
		{
			name: "duplicate subcategory across categories",
			mutate: func(c *config.Config) {
				c.Survey.Categories[1].Subcategories = append(c.Survey.Categories[1].Subcategories, "Bus")
			},
			wantErr: `subcategory "Bus"`,
		},
		{
			name: "duplicate category",
			mutate: func(c *config.Config) {
				c.Survey.Categories = append(c.Survey.Categories, c.Survey.Categories[0])
			},
			wantErr: "duplicate survey category",
		},
		{
			name:    "category without subcategories",
			mutate:  func(c *config.Config) { c.Survey.Categories[0].Subcategories = nil },
			wantErr: "has no subcategories",
		},
		{
			name:    "unknown encoding",
			mutate:  func(c *config.Config) { c.Reference.FullEncoding = "ebcdic" },
			wantErr: "reference.full_encoding",
		},
		{
			name:    "unknown rule tag",
			mutate:  func(c *config.Config) { c.Calculation.Rules["Avion"] = "hourly" },
			wantErr: "calculation.rules",
		},
		{
			name:    "zero serving weight",
			mutate:  func(c *config.Config) { c.Calculation.ServingWeightKg = 0 },
			wantErr: "serving_weight_kg",
		},
		{
			name:    "negative baseline",
			mutate:  func(c *config.Config) { c.Report.BaselineKg = -1 },
			wantErr: "baseline_kg",
		},
		{
			name:    "dpi out of range",
			mutate:  func(c *config.Config) { c.Report.ChartDPI = 5 },
			wantErr: "chart_dpi",
		},
		{
			name:    "blank chart path",
			mutate:  func(c *config.Config) { c.Report.ChartPath = "  " },
			wantErr: "chart_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDelimiter(t *testing.T) {
	r, err := config.Delimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)

	r, err = config.Delimiter("\t")
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	_, err = config.Delimiter("")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "debug", got.Level)

	lc.File = "/tmp/carboncalc.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/tmp/carboncalc.log", got.File)
}
