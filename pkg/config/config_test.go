package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/saasgen/pkg/types"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, EnvDev, c.Env)
	require.Equal(t, 10000, c.Generator.Customers)
	require.Equal(t, uint64(42), c.Generator.Seed)
	require.Equal(t, "2022-01-01", c.Generator.StartDate)
	require.Equal(t, "2024-12-31", c.Generator.EndDate)
	require.Len(t, c.Generator.Segments, 3)
	require.Equal(t, "SMB", c.Generator.Segments[0].Name)
	require.InDelta(t, 0.6, c.Generator.Segments[0].Weight, 1e-9)
	require.InDelta(t, 0.07, c.Generator.Segments[2].ChurnProbability, 1e-9)
	require.Len(t, c.Generator.Plans, 3)
	require.Equal(t, "129.99", c.Generator.Plans[2].MonthlyPrice)
	require.Equal(t, []int{1, 2, 3}, c.Generator.Costs.SeasonalMonths)
	require.Equal(t, types.LoadModeReplace, c.Database.LoadMode)
	require.Equal(t, "postgres", c.Database.Driver)
}

func TestNew_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "saasgen.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
generator:
  customers: 250
  start_date: "2023-01-01"
  plans:
    - name: Basic
      monthly_price: "9.50"
database:
  driver: sqlite
`), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)
	t.Setenv("APP_GENERATOR_SEED", "7")

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, 250, c.Generator.Customers)
	require.Equal(t, uint64(7), c.Generator.Seed)
	require.Equal(t, "2023-01-01", c.Generator.StartDate)
	require.Equal(t, "2024-12-31", c.Generator.EndDate)
	require.Len(t, c.Generator.Plans, 1)
	require.Equal(t, "9.50", c.Generator.Plans[0].MonthlyPrice)
	require.Equal(t, "sqlite", c.Database.Driver)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := New()
	require.Error(t, err)
}
