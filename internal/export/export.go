package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ParseFormat accepts json, yaml/yml and csv, case-insensitively.
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

const maxNameAttempts = 100

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format    ExportFormat
	OutputDir string
}

// csvHeaders is one row per allocation with the plan repeated on each row.
var csvHeaders = []string{
	"name", "symbol", "token_admin", "market_cap_eth", "initial_price_eth",
	"dev_buy_eth", "dev_buy_tokens", "dev_buy_price_impact_pct",
	"allocation", "amount", "percentage",
}

// PlanExporter writes launch plans to disk
type PlanExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewPlanExporter creates a new plan exporter
func NewPlanExporter(logger *zap.Logger) *PlanExporter {
	return &PlanExporter{
		logger: logger,
		now:    time.Now,
	}
}

// Export writes plan to a timestamped file in options.OutputDir and returns
// its path. The file only appears once it is fully written, and an existing
// export is never overwritten: a clashing name gets a numeric suffix.
func (pe *PlanExporter) Export(plan *clanker.LaunchPlan, options ExportOptions) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("no plan to export")
	}
	if options.Format == "" {
		options.Format = FormatJSON
	}
	if options.OutputDir == "" {
		options.OutputDir = "."
	}

	var encode func(io.Writer, *clanker.LaunchPlan) error
	switch options.Format {
	case FormatCSV:
		encode = pe.exportToCSV
	case FormatJSON:
		encode = pe.exportToJSON
	case FormatYAML:
		encode = pe.exportToYAML
	default:
		return "", fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath, err := writeTemp(options.OutputDir, func(w io.Writer) error { return encode(w, plan) })
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpPath)

	outputPath, err := reserve(options.OutputDir, pe.generateFilename(plan, options.Format))
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(outputPath)
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	pe.logger.Info("Plan exported",
		zap.String("path", outputPath),
		zap.String("symbol", plan.Config.Symbol),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// writeTemp runs encode against a hidden file in dir and returns its path.
// Nothing is left behind when encoding or closing fails.
func writeTemp(dir string, encode func(io.Writer) error) (string, error) {
	file, err := os.CreateTemp(dir, ".plan-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	path := file.Name()

	err = encode(file)
	if err == nil {
		err = file.Chmod(0644)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// reserve claims name in dir, or name_1, name_2 and so on when taken.
func reserve(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 0; n < maxNameAttempts; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create export file: %w", err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("failed to close export file: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s after %d attempts", name, maxNameAttempts)
}

// generateFilename creates plan_<symbol>_<timestamp>.<ext>
func (pe *PlanExporter) generateFilename(plan *clanker.LaunchPlan, format ExportFormat) string {
	timestamp := pe.now().Format("20060102_150405")
	symbol := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, plan.Config.Symbol)
	if symbol == "" {
		symbol = "token"
	}
	return fmt.Sprintf("plan_%s_%s.%s", symbol, timestamp, format)
}

func (pe *PlanExporter) exportToCSV(w io.Writer, plan *clanker.LaunchPlan) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range planRows(plan) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write allocation: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func planRows(plan *clanker.LaunchPlan) [][]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	g := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	rows := make([][]string, 0, len(plan.Distribution))
	for _, a := range plan.Distribution {
		rows = append(rows, []string{
			plan.Config.Name,
			plan.Config.Symbol,
			plan.Config.TokenAdmin,
			f(plan.MarketCapEth),
			g(plan.InitialPrice),
			f(plan.Config.DevBuyEth()),
			f(plan.DevBuy.TokensReceived),
			f(plan.DevBuy.PriceImpact),
			a.Name,
			f(a.Amount),
			f(a.Percentage),
		})
	}
	return rows
}

func (pe *PlanExporter) exportToJSON(w io.Writer, plan *clanker.LaunchPlan) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time           `json:"export_time"`
		Plan       *clanker.LaunchPlan `json:"plan"`
		Summary    PlanSummary         `json:"summary"`
	}{
		ExportTime: pe.now().UTC(),
		Plan:       plan,
		Summary:    Summarize(plan),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (pe *PlanExporter) exportToYAML(w io.Writer, plan *clanker.LaunchPlan) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	exportData := struct {
		ExportTime time.Time           `yaml:"exportTime"`
		Plan       *clanker.LaunchPlan `yaml:"plan"`
		Summary    PlanSummary         `yaml:"summary"`
	}{
		ExportTime: pe.now().UTC(),
		Plan:       plan,
		Summary:    Summarize(plan),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}
	return nil
}

// PlanSummary contains the headline numbers of a launch plan
type PlanSummary struct {
	DevBuyEth           float64 `json:"dev_buy_eth" yaml:"devBuyEth"`
	DevBuySupplyPct     float64 `json:"dev_buy_supply_pct" yaml:"devBuySupplyPct"`
	ExtensionsPct       float64 `json:"extensions_pct" yaml:"extensionsPct"`
	LiquidityPoolTokens float64 `json:"liquidity_pool_tokens" yaml:"liquidityPoolTokens"`
	RewardRecipients    int     `json:"reward_recipients" yaml:"rewardRecipients"`
	FeeType             string  `json:"fee_type" yaml:"feeType"`
}

// Summarize calculates summary statistics for a plan
func Summarize(plan *clanker.LaunchPlan) PlanSummary {
	summary := PlanSummary{
		DevBuyEth:        plan.Config.DevBuyEth(),
		RewardRecipients: len(plan.Config.Rewards.Recipients),
		FeeType:          string(plan.Config.Fees.Type),
	}
	if plan.TotalSupply > 0 {
		summary.DevBuySupplyPct = plan.DevBuy.TokensReceived / plan.TotalSupply * 100
	}
	for _, a := range plan.Distribution {
		if a.Name == clanker.AllocationLiquidityPool {
			summary.LiquidityPoolTokens = a.Amount
			continue
		}
		summary.ExtensionsPct += a.Percentage
	}
	return summary
}
