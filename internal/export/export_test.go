package export

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
)

func testPlan(t *testing.T) *clanker.LaunchPlan {
	t.Helper()
	cfg := clanker.NewDeployConfig("Based Meme", "BMEME", "0x1234567890123456789012345678901234567890")
	cfg.DevBuy = &clanker.DevBuyConfig{EthAmount: 0.1}
	cfg.Vault = &clanker.VaultConfig{Percentage: 20, LockupDuration: clanker.Days(30)}
	plan, err := cfg.Plan(10)
	require.NoError(t, err)
	return plan
}

func newTestExporter() *PlanExporter {
	pe := NewPlanExporter(zap.NewNop())
	pe.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	return pe
}

func TestPlanExportJSON(t *testing.T) {
	dir := t.TempDir()
	outputPath, err := newTestExporter().Export(testPlan(t), ExportOptions{Format: FormatJSON, OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan_bmeme_20261018_093000.json"), outputPath)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var decoded struct {
		Plan    clanker.LaunchPlan `json:"plan"`
		Summary PlanSummary        `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "BMEME", decoded.Plan.Config.Symbol)
	assert.Len(t, decoded.Plan.Distribution, 2)
	assert.Equal(t, 20.0, decoded.Summary.ExtensionsPct)
	assert.Equal(t, 8e10, decoded.Summary.LiquidityPoolTokens)
	assert.InDelta(t, 0.990099, decoded.Summary.DevBuySupplyPct, 1e-6)
}

func TestPlanExportYAML(t *testing.T) {
	outputPath, err := newTestExporter().Export(testPlan(t), ExportOptions{Format: FormatYAML, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, ".yaml", filepath.Ext(outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(content, &decoded))
	plan, ok := decoded["plan"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 10, plan["marketCapEth"])
	assert.Contains(t, string(content), "Liquidity Pool")
}

func TestPlanExportCSV(t *testing.T) {
	outputPath, err := newTestExporter().Export(testPlan(t), ExportOptions{Format: FormatCSV, OutputDir: t.TempDir()})
	require.NoError(t, err)

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeaders, records[0])
	assert.Equal(t, []string{"Vault", "20000000000", "20"}, records[1][8:])
	assert.Equal(t, []string{"Liquidity Pool", "80000000000", "80"}, records[2][8:])
	assert.Equal(t, "0.1", records[1][5])
}

func TestPlanExportErrors(t *testing.T) {
	pe := newTestExporter()

	_, err := pe.Export(nil, ExportOptions{OutputDir: t.TempDir()})
	assert.Error(t, err)

	_, err = pe.Export(testPlan(t), ExportOptions{Format: "xml", OutputDir: t.TempDir()})
	assert.Error(t, err)
}

func TestPlanExportFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	plan := testPlan(t)
	plan.InitialPrice = math.Inf(1)

	_, err := newTestExporter().Export(plan, ExportOptions{Format: FormatJSON, OutputDir: dir})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPlanExportNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	pe := newTestExporter()

	first, err := pe.Export(testPlan(t), ExportOptions{Format: FormatJSON, OutputDir: dir})
	require.NoError(t, err)

	other := testPlan(t)
	other.MarketCapEth = 42
	second, err := pe.Export(other, ExportOptions{Format: FormatJSON, OutputDir: dir})
	require.NoError(t, err)
	third, err := pe.Export(other, ExportOptions{Format: FormatJSON, OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "plan_bmeme_20261018_093000.json"), first)
	assert.Equal(t, filepath.Join(dir, "plan_bmeme_20261018_093000_1.json"), second)
	assert.Equal(t, filepath.Join(dir, "plan_bmeme_20261018_093000_2.json"), third)

	var decoded struct {
		Plan clanker.LaunchPlan `json:"plan"`
	}
	content, err := os.ReadFile(first)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, 10.0, decoded.Plan.MarketCapEth)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	info, err := os.Stat(second)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestParseFormat(t *testing.T) {
	tests := map[string]ExportFormat{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "csv": FormatCSV}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestGenerateFilenameSanitizesSymbol(t *testing.T) {
	pe := newTestExporter()
	plan := &clanker.LaunchPlan{Config: clanker.DeployConfig{Symbol: "$ДОГ/../x"}}
	assert.Equal(t, "plan_x_20261018_093000.csv", pe.generateFilename(plan, FormatCSV))

	plan.Config.Symbol = "🚀"
	assert.Equal(t, "plan_token_20261018_093000.json", pe.generateFilename(plan, FormatJSON))
}
