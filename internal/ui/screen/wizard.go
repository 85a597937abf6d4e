package screen

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/dex/clanker"
	"github.com/rovshanmuradov/clanker-launchpad/internal/export"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/component"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/router"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/style"
)

// WizardStep represents the current step in the wizard
type WizardStep int

const (
	StepBasics WizardStep = iota
	StepDevBuy
	StepExtensions
	StepRewards
	StepReview
	StepSaved
)

var stepNames = []string{"Token", "Dev buy", "Extensions", "Rewards & fees", "Review"}

// PlanExporter writes a finished plan to disk.
type PlanExporter interface {
	Export(plan *clanker.LaunchPlan, options export.ExportOptions) (string, error)
}

// WizardOptions configures a LaunchWizard.
type WizardOptions struct {
	MarketCapEth float64
	OutputDir    string
	Format       export.ExportFormat
}

// LaunchWizard walks the deployer through building a deploy config and
// previews the dev buy and supply distribution as values change.
type LaunchWizard struct {
	width  int
	height int
	keyMap ui.KeyMap
	help   help.Model
	logger *zap.Logger

	exporter PlanExporter
	options  WizardOptions

	basicsForm     *component.Form
	devBuyForm     *component.Form
	extensionsForm *component.Form
	rewardsForm    *component.Form

	currentStep WizardStep
	errors      []string
	plan        *clanker.LaunchPlan
	savedPath   string

	distributionTable *component.Table

	titleStyle     lipgloss.Style
	containerStyle lipgloss.Style
}

// NewLaunchWizard creates a new launch wizard
func NewLaunchWizard(exporter PlanExporter, options WizardOptions, logger *zap.Logger) *LaunchWizard {
	if options.MarketCapEth <= 0 {
		options.MarketCapEth = clanker.DefaultMarketCapEth
	}
	if options.Format == "" {
		options.Format = export.FormatJSON
	}
	palette := style.DefaultPalette()

	w := &LaunchWizard{
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		logger:   logger.Named("wizard"),
		exporter: exporter,
		options:  options,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0),

		containerStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 2),
	}

	w.initializeForms()
	w.distributionTable = component.NewTable().
		AddColumn("Allocation", 16, lipgloss.Left).
		AddColumn("Tokens", 22, lipgloss.Right).
		AddColumn("Share", 10, lipgloss.Right)

	return w
}

func (w *LaunchWizard) initializeForms() {
	w.basicsForm = component.NewForm().
		SetTitle("Token basics").
		AddField("name", component.FieldTypeText, "Name", true, "My Token").
		AddField("symbol", component.FieldTypeText, "Symbol", true, "MTK").
		AddField("admin", component.FieldTypeText, "Token admin", true, "0x...").
		AddField("image", component.FieldTypeText, "Image URI", false, "ipfs://...").
		AddField("description", component.FieldTypeText, "Description", false, "")
	w.basicsForm.SetFieldValidation("admin", validAddress)

	w.devBuyForm = component.NewForm().
		SetTitle("Dev buy").
		AddField("eth_amount", component.FieldTypeNumber, "Dev buy (ETH)", false, "0").
		AddField("market_cap", component.FieldTypeNumber, "Starting market cap (ETH)", true, "10")
	w.devBuyForm.SetFieldValue("market_cap", strconv.FormatFloat(w.options.MarketCapEth, 'f', -1, 64))
	w.devBuyForm.SetFieldValidation("eth_amount", nonNegative)
	w.devBuyForm.SetFieldValidation("market_cap", positive)

	w.extensionsForm = component.NewForm().
		SetTitle("Extensions").
		AddField("vault_enabled", component.FieldTypeCheckbox, "Vault", false, "").
		AddField("vault_pct", component.FieldTypeNumber, "Vault % of supply", false, "20").
		AddField("vault_lockup_days", component.FieldTypeNumber, "Vault lockup (days)", false, "30").
		AddField("vault_vesting_days", component.FieldTypeNumber, "Vault vesting (days)", false, "0").
		AddField("airdrop_enabled", component.FieldTypeCheckbox, "Airdrop", false, "").
		AddField("airdrop_pct", component.FieldTypeNumber, "Airdrop % of supply", false, "10").
		AddField("airdrop_lockup_days", component.FieldTypeNumber, "Airdrop lockup (days)", false, "1").
		AddField("airdrop_merkle_root", component.FieldTypeText, "Airdrop merkle root", false, "0x...")
	w.extensionsForm.
		SetFieldValue("vault_pct", "20").
		SetFieldValue("vault_lockup_days", "30").
		SetFieldValue("vault_vesting_days", "0").
		SetFieldValue("airdrop_pct", "10").
		SetFieldValue("airdrop_lockup_days", "1")

	w.rewardsForm = component.NewForm().
		SetTitle("Rewards & fees").
		AddField("fee_type", component.FieldTypeSelect, "Fee type", true, "").
		AddField("clanker_fee_bps", component.FieldTypeNumber, "Static token fee (bps)", false, "100").
		AddField("paired_fee_bps", component.FieldTypeNumber, "Static WETH fee (bps)", false, "100").
		AddField("base_fee_bps", component.FieldTypeNumber, "Dynamic base fee (bps)", false, "100").
		AddField("max_fee_bps", component.FieldTypeNumber, "Dynamic max fee (bps)", false, "1000").
		AddField("reward_recipient", component.FieldTypeText, "Reward recipient", false, "defaults to admin").
		AddField("reward_token", component.FieldTypeSelect, "Reward token", true, "")
	w.rewardsForm.
		SetSelectOptions("fee_type", []string{string(clanker.FeeTypeStatic), string(clanker.FeeTypeDynamic)}).
		SetSelectOptions("reward_token", []string{
			string(clanker.RewardTokenBoth), string(clanker.RewardTokenPaired), string(clanker.RewardTokenClanker),
		}).
		SetFieldValue("clanker_fee_bps", "100").
		SetFieldValue("paired_fee_bps", "100").
		SetFieldValue("base_fee_bps", "100").
		SetFieldValue("max_fee_bps", "1000").
		SetFieldValidation("reward_recipient", optionalAddress)
}

// Init initializes the wizard
func (w *LaunchWizard) Init() tea.Cmd {
	return w.basicsForm.Init()
}

// Update handles wizard updates
func (w *LaunchWizard) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if form := w.currentForm(); form != nil {
			_, cmd := form.Update(msg)
			return w, cmd
		}
		return w, nil
	}

	switch {
	case key.Matches(keyMsg, w.keyMap.Back):
		if w.currentStep == StepBasics || w.currentStep == StepSaved {
			return w, ui.Back
		}
		w.errors = nil
		w.currentStep--
		return w, nil

	case key.Matches(keyMsg, w.keyMap.Save):
		if w.currentStep == StepReview {
			w.save()
		}
		return w, nil

	case key.Matches(keyMsg, w.keyMap.Enter):
		switch w.currentStep {
		case StepReview:
			w.save()
		case StepSaved:
			return w, ui.Navigate(ui.RouteMenu)
		default:
			if w.validateCurrentStep() {
				w.nextStep()
			}
		}
		return w, nil
	}

	if form := w.currentForm(); form != nil {
		_, cmd := form.Update(msg)
		return w, cmd
	}
	return w, nil
}

// View renders the wizard
func (w *LaunchWizard) View() string {
	var content strings.Builder

	title := "Clanker launch wizard"
	if w.currentStep < StepSaved {
		title = fmt.Sprintf("%s - step %d/%d", title, int(w.currentStep)+1, len(stepNames))
	}
	content.WriteString(w.titleStyle.Render(title))
	content.WriteString("\n")
	content.WriteString(w.renderStepIndicator())
	content.WriteString("\n\n")

	for _, err := range w.errors {
		content.WriteString(style.ErrorTextStyle.Render("x " + err))
		content.WriteString("\n")
	}

	content.WriteString(w.containerStyle.Render(w.renderCurrentStep()))
	content.WriteString("\n")
	content.WriteString(w.help.ShortHelpView(w.keyMap.ContextualHelp(ui.RouteWizard)))

	return content.String()
}

// SetSize sets the screen dimensions
func (w *LaunchWizard) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.help.Width = width

	formWidth := min(width-8, 60)
	for _, form := range []*component.Form{w.basicsForm, w.devBuyForm, w.extensionsForm, w.rewardsForm} {
		form.SetWidth(formWidth)
	}
}

func (w *LaunchWizard) currentForm() *component.Form {
	switch w.currentStep {
	case StepBasics:
		return w.basicsForm
	case StepDevBuy:
		return w.devBuyForm
	case StepExtensions:
		return w.extensionsForm
	case StepRewards:
		return w.rewardsForm
	default:
		return nil
	}
}

func (w *LaunchWizard) renderStepIndicator() string {
	palette := style.DefaultPalette()
	indicators := make([]string, 0, len(stepNames))

	for i, name := range stepNames {
		switch {
		case i == int(w.currentStep):
			indicators = append(indicators, lipgloss.NewStyle().
				Foreground(palette.Background).
				Background(palette.Primary).
				Bold(true).
				Padding(0, 1).
				Render(fmt.Sprintf("%d. %s", i+1, name)))
		case i < int(w.currentStep):
			indicators = append(indicators, lipgloss.NewStyle().
				Foreground(palette.Success).
				Render("✓ "+name))
		default:
			indicators = append(indicators, lipgloss.NewStyle().
				Foreground(palette.TextMuted).
				Render(fmt.Sprintf("%d. %s", i+1, name)))
		}
	}

	return strings.Join(indicators, " → ")
}

func (w *LaunchWizard) renderCurrentStep() string {
	switch w.currentStep {
	case StepDevBuy:
		return lipgloss.JoinHorizontal(lipgloss.Top, w.devBuyForm.View(), "    ", w.renderDevBuyPreview())
	case StepExtensions:
		return lipgloss.JoinHorizontal(lipgloss.Top, w.extensionsForm.View(), "    ", w.renderDistribution())
	case StepReview:
		return w.renderReview()
	case StepSaved:
		return w.renderSaved()
	default:
		return w.currentForm().View()
	}
}

// renderDevBuyPreview shows both estimators for the values typed so far.
func (w *LaunchWizard) renderDevBuyPreview() string {
	eth, errEth := w.devBuyForm.GetFloat("eth_amount")
	mcap, errMcap := w.devBuyForm.GetFloat("market_cap")
	if errEth != nil || errMcap != nil || notFinite(eth) || notFinite(mcap) {
		return style.MutedTextStyle.Render("Enter numbers to see an estimate")
	}

	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render("Estimate"))
	b.WriteString("\n")
	b.WriteString(style.KeyValue("Initial price", component.FormatPrice(clanker.InitialPrice(mcap, clanker.DefaultTotalSupply))))
	b.WriteString("\n")

	result := clanker.CalculateDevBuyTokens(eth, mcap, clanker.DefaultTotalSupply)
	if result.IsZero() {
		b.WriteString(style.MutedTextStyle.Render("No dev buy"))
		return b.String()
	}
	if !result.IsFinite() {
		b.WriteString(style.MutedTextStyle.Render("Estimate out of range"))
		return b.String()
	}

	b.WriteString(style.KeyValue("Tokens received", component.FormatAmount(result.TokensReceived, 2)))
	b.WriteString("\n")
	b.WriteString(style.KeyValue("Share of supply", component.FormatPercent(result.TokensReceived/clanker.DefaultTotalSupply*100)))
	b.WriteString("\n")
	b.WriteString(style.KeyValue("Price impact", component.FormatPercent(result.PriceImpact)))
	b.WriteString("\n")
	b.WriteString(style.KeyValue("Effective price", component.FormatPrice(result.EffectivePrice)))
	b.WriteString("\n")
	b.WriteString(style.KeyValue("Price after buy", component.FormatPrice(result.NewPrice)))

	if quick := clanker.CalculateDevBuyEstimate(eth, mcap, clanker.DefaultTotalSupply); quick != nil {
		b.WriteString("\n\n")
		b.WriteString(style.MutedTextStyle.Render(fmt.Sprintf("Quick estimate: %s tokens, %s impact",
			component.FormatAmount(quick.EstimatedTokens, 0), component.FormatPercent(quick.PriceImpact))))
	}
	if result.PriceImpact > 50 {
		b.WriteString("\n")
		b.WriteString(style.WarningTextStyle.Render("Large dev buy: more than half the price move happens at launch"))
	}
	return b.String()
}

// renderDistribution shows the supply split for the current extension
// settings. Over-allocation is shown as is.
func (w *LaunchWizard) renderDistribution() string {
	vaultPct, _ := w.extensionsForm.GetFloat("vault_pct")
	airdropPct, _ := w.extensionsForm.GetFloat("airdrop_pct")

	cfg := clanker.DistributionConfig{
		Vault:   clanker.ExtensionSetting{Enabled: w.extensionsForm.Checked("vault_enabled"), Percentage: vaultPct},
		Airdrop: clanker.ExtensionSetting{Enabled: w.extensionsForm.Checked("airdrop_enabled"), Percentage: airdropPct},
	}
	allocations := clanker.CalculateTokenDistribution(cfg, clanker.DefaultTotalSupply)
	w.fillDistributionTable(allocations)

	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render("Distribution"))
	b.WriteString("\n")
	b.WriteString(w.distributionTable.View())

	if pool := allocations[len(allocations)-1]; pool.Amount < 0 {
		b.WriteString("\n")
		b.WriteString(style.ErrorTextStyle.Render("Extensions exceed total supply"))
	}
	return b.String()
}

func (w *LaunchWizard) fillDistributionTable(allocations []clanker.Allocation) {
	palette := style.DefaultPalette()
	rows := make([][]string, len(allocations))
	for i, a := range allocations {
		rows[i] = []string{a.Name, component.FormatAmount(a.Amount, 0), component.FormatPercent(a.Percentage)}
	}
	w.distributionTable.SetRows(rows)
	for i, a := range allocations {
		switch a.Name {
		case clanker.AllocationVault:
			w.distributionTable.SetRowColor(i, palette.Vault)
		case clanker.AllocationAirdrop:
			w.distributionTable.SetRowColor(i, palette.Airdrop)
		default:
			w.distributionTable.SetRowColor(i, palette.Pool)
		}
	}
}

func (w *LaunchWizard) renderReview() string {
	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render("Review"))
	b.WriteString("\n")

	if w.plan == nil {
		b.WriteString(style.MutedTextStyle.Render("Fix the errors above, then press esc to edit."))
		return b.String()
	}

	p := w.plan
	lines := []string{
		style.KeyValue("Token", fmt.Sprintf("%s (%s)", p.Config.Name, p.Config.Symbol)),
		style.KeyValue("Admin", p.Config.TokenAdmin),
		style.KeyValue("Market cap", component.FormatAmount(p.MarketCapEth, 2)+" ETH"),
		style.KeyValue("Dev buy", component.FormatAmount(p.Config.DevBuyEth(), 4)+" ETH"),
	}
	if !p.DevBuy.IsZero() {
		lines = append(lines,
			style.KeyValue("Dev buy tokens", component.FormatAmount(p.DevBuy.TokensReceived, 2)),
			style.KeyValue("Price impact", component.FormatPercent(p.DevBuy.PriceImpact)))
	}
	lines = append(lines,
		style.KeyValue("Fees", describeFees(p.Config.Fees)),
		style.KeyValue("Reward recipients", strconv.Itoa(len(p.Config.Rewards.Recipients))))

	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	w.fillDistributionTable(p.Distribution)
	b.WriteString(w.distributionTable.View())
	b.WriteString("\n\n")
	b.WriteString(style.MutedTextStyle.Render(fmt.Sprintf("Press enter to save as %s into %s", w.options.Format, w.outputDir())))
	return b.String()
}

func (w *LaunchWizard) renderSaved() string {
	var b strings.Builder
	b.WriteString(style.SuccessTextStyle.Render("Launch plan saved"))
	b.WriteString("\n\n")
	b.WriteString(style.KeyValue("File", w.savedPath))
	b.WriteString("\n\n")
	b.WriteString(style.MutedTextStyle.Render("Hand the config section to the Clanker SDK to deploy. Press enter for the menu."))
	return b.String()
}

func describeFees(f clanker.FeeConfig) string {
	if f.Type == clanker.FeeTypeDynamic {
		return fmt.Sprintf("dynamic %d-%d bps", f.BaseFeeBps, f.MaxFeeBps)
	}
	return fmt.Sprintf("static %d/%d bps", f.ClankerFeeBps, f.PairedFeeBps)
}

func (w *LaunchWizard) outputDir() string {
	if w.options.OutputDir == "" {
		return "."
	}
	return w.options.OutputDir
}

// validateCurrentStep validates the current step's form
func (w *LaunchWizard) validateCurrentStep() bool {
	w.errors = nil

	form := w.currentForm()
	if form == nil {
		return true
	}
	if !form.Validate() {
		w.errors = append(w.errors, "Please fill in all required fields correctly.")
		return false
	}
	return true
}

// nextStep advances, building the plan when entering review.
func (w *LaunchWizard) nextStep() {
	if w.currentStep >= StepReview {
		return
	}
	w.currentStep++
	if w.currentStep == StepReview {
		w.buildPlan()
	}
	w.logger.Debug("Wizard step", zap.Stringer("step", w.currentStep))
}

func (w *LaunchWizard) buildPlan() {
	w.plan = nil
	w.errors = nil

	cfg, err := w.DeployConfig()
	if err != nil {
		w.errors = append(w.errors, err.Error())
		return
	}
	mcap, _ := w.devBuyForm.GetFloat("market_cap")

	plan, err := cfg.Plan(mcap)
	if err != nil {
		if verrs, ok := clanker.AsValidationErrors(err); ok {
			for _, v := range verrs {
				w.errors = append(w.errors, v.Error())
			}
			w.logger.Warn("Deploy config invalid", zap.Strings("fields", verrs.Fields()))
			return
		}
		w.errors = append(w.errors, err.Error())
		return
	}
	w.plan = plan
}

func (w *LaunchWizard) save() {
	if w.plan == nil {
		return
	}
	path, err := w.exporter.Export(w.plan, export.ExportOptions{
		Format:    w.options.Format,
		OutputDir: w.options.OutputDir,
	})
	if err != nil {
		w.errors = []string{fmt.Sprintf("Error saving plan: %v", err)}
		w.logger.Error("Failed to save plan", zap.Error(err))
		return
	}
	w.errors = nil
	w.savedPath = path
	w.currentStep = StepSaved
}

// DeployConfig assembles a deploy config from the forms. Number fields that
// fail to parse are reported; range checks are left to Validate.
func (w *LaunchWizard) DeployConfig() (*clanker.DeployConfig, error) {
	var parseErrs []error
	num := func(form *component.Form, name string) float64 {
		v, err := form.GetFloat(name)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return v
	}
	days := func(name string) int64 {
		return int64(num(w.extensionsForm, name) * 24 * 60 * 60)
	}

	admin := w.basicsForm.GetValue("admin")
	cfg := clanker.NewDeployConfig(w.basicsForm.GetValue("name"), w.basicsForm.GetValue("symbol"), admin)
	cfg.Image = w.basicsForm.GetValue("image")
	cfg.Metadata.Description = w.basicsForm.GetValue("description")

	if eth := num(w.devBuyForm, "eth_amount"); eth != 0 {
		cfg.DevBuy = &clanker.DevBuyConfig{EthAmount: eth}
	}

	if w.extensionsForm.Checked("vault_enabled") {
		cfg.Vault = &clanker.VaultConfig{
			Percentage:      num(w.extensionsForm, "vault_pct"),
			LockupDuration:  days("vault_lockup_days"),
			VestingDuration: days("vault_vesting_days"),
		}
	}
	if w.extensionsForm.Checked("airdrop_enabled") {
		cfg.Airdrop = &clanker.AirdropConfig{
			MerkleRoot:     w.extensionsForm.GetValue("airdrop_merkle_root"),
			Percentage:     num(w.extensionsForm, "airdrop_pct"),
			LockupDuration: days("airdrop_lockup_days"),
		}
	}

	switch clanker.FeeType(w.rewardsForm.GetValue("fee_type")) {
	case clanker.FeeTypeDynamic:
		cfg.Fees = clanker.FeeConfig{
			Type:       clanker.FeeTypeDynamic,
			BaseFeeBps: int(num(w.rewardsForm, "base_fee_bps")),
			MaxFeeBps:  int(num(w.rewardsForm, "max_fee_bps")),
		}
	default:
		cfg.Fees = clanker.FeeConfig{
			Type:          clanker.FeeTypeStatic,
			ClankerFeeBps: int(num(w.rewardsForm, "clanker_fee_bps")),
			PairedFeeBps:  int(num(w.rewardsForm, "paired_fee_bps")),
		}
	}

	recipient := w.rewardsForm.GetValue("reward_recipient")
	if recipient == "" {
		recipient = admin
	}
	cfg.Rewards.Recipients = []clanker.RewardRecipient{{
		Recipient: recipient,
		Admin:     admin,
		Bps:       clanker.BpsTotal,
		Token:     clanker.RewardToken(w.rewardsForm.GetValue("reward_token")),
	}}

	if len(parseErrs) > 0 {
		return nil, errors.Join(parseErrs...)
	}
	return cfg, nil
}

// CurrentStep returns the step being shown
func (w *LaunchWizard) CurrentStep() WizardStep {
	return w.currentStep
}

// Plan returns the plan built on the review step, nil until then.
func (w *LaunchWizard) Plan() *clanker.LaunchPlan {
	return w.plan
}

// Errors returns the messages currently shown above the step.
func (w *LaunchWizard) Errors() []string {
	return w.errors
}

// String returns the step name
func (s WizardStep) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return "Saved"
}

var errNotFinite = errors.New("must be a finite number")

func validAddress(v string) error {
	if !common.IsHexAddress(v) {
		return errors.New("must be a 0x-prefixed 20-byte address")
	}
	return nil
}

func optionalAddress(v string) error {
	if v == "" {
		return nil
	}
	return validAddress(v)
}

// nonNegative and positive leave unparsable input to the form's number check.
func nonNegative(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	if notFinite(f) {
		return errNotFinite
	}
	if f < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func notFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func positive(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	if notFinite(f) {
		return errNotFinite
	}
	if f <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}
