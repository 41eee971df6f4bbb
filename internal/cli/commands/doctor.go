package commands

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maive-lab/mockcsv/internal/cli/config"
	"github.com/maive-lab/mockcsv/internal/cli/output"
	"github.com/maive-lab/mockcsv/internal/pipeline"
	"github.com/maive-lab/mockcsv/internal/schema"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a health check over the project and its sources",
		Long: `Analyze your mockcsv project and source tables for problems before generating.

The doctor command processes every source without writing anything and reports:
- Project summary (sources, usable tables, rows)
- Health checks grouped by category (Setup, Sources, Columns)
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  mockcsv doctor

  # Output as JSON
  mockcsv doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	ConfigFile string `json:"config_file,omitempty"`
	SourceDir  string `json:"source_dir"`
	Sources    int    `json:"sources"`
	Usable     int    `json:"usable"`
	Rejected   int    `json:"rejected"`
	Rows       int    `json:"rows"`
	KeptRows   int    `json:"kept_rows"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	CheckID    string   `json:"check_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// healthRule describes one check; issues found for an error rule make the
// check fail, otherwise it warns.
type healthRule struct {
	ID    string
	Name  string
	Group string
	Error bool
}

var healthRules = []healthRule{
	{ID: "SU01", Name: "config-file", Group: "setup"},
	{ID: "SU02", Name: "source-directory", Group: "setup", Error: true},
	{ID: "SU03", Name: "state-database", Group: "setup"},
	{ID: "SR01", Name: "sources-found", Group: "sources", Error: true},
	{ID: "SR02", Name: "tables-readable", Group: "sources", Error: true},
	{ID: "SR03", Name: "tables-keep-rows", Group: "sources", Error: true},
	{ID: "SR04", Name: "rows-valid", Group: "sources"},
	{ID: "CD01", Name: "headers-recognized", Group: "columns"},
	{ID: "CD02", Name: "sample-size-unambiguous", Group: "columns"},
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	issues := make(map[string][]string)
	summary := ProjectSummary{
		ConfigFile: config.GetConfigFileUsed(),
		SourceDir:  cfg.SourceDir,
	}

	if summary.ConfigFile == "" {
		issues["SU01"] = append(issues["SU01"], "no mockcsv.yaml found, using defaults (run 'mockcsv init')")
	}

	if _, cleanup, err := cmdCtx.OpenStore(); err != nil {
		issues["SU03"] = append(issues["SU03"], err.Error())
	} else {
		cleanup()
	}

	report, err := dryRun(cmd, cmdCtx)
	switch {
	case report == nil:
		issues["SU02"] = append(issues["SU02"], err.Error())
	case err != nil:
		summarizeReport(report, &summary, issues)
		issues["SR02"] = append(issues["SR02"], err.Error())
	default:
		summarizeReport(report, &summary, issues)
	}

	doctorOutput := buildDoctorOutput(summary, issues)

	// Render based on mode
	effectiveMode := r.EffectiveMode()
	switch effectiveMode {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

// dryRun processes every source without writing or recording anything.
func dryRun(cmd *cobra.Command, cmdCtx *CommandContext) (*pipeline.Report, error) {
	pcfg, err := cmdCtx.Cfg.PipelineConfig()
	if err != nil {
		return nil, err
	}
	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	seed := uint64(0)
	pcfg.Seed = &seed
	pcfg.DryRun = true
	pcfg.Logger = cmdCtx.Logger
	return pipeline.New(pcfg).Run(cmd.Context())
}

// summarizeReport fills the summary and collects source and column issues.
func summarizeReport(report *pipeline.Report, summary *ProjectSummary, issues map[string][]string) {
	summary.Sources = len(report.Tables)
	summary.Usable = report.Succeeded
	summary.Rejected = report.Failed
	summary.Rows = report.TotalRows
	summary.KeptRows = report.KeptRows

	if len(report.Tables) == 0 {
		issues["SR01"] = append(issues["SR01"], "no source matched the configured extensions in "+report.SourceDir)
	}

	for _, t := range report.Tables {
		if d := t.Diagnostic; d != nil {
			id := "SR02"
			if d.Code == pipeline.CodeNoValidRows {
				id = "SR03"
			}
			issues[id] = append(issues[id], fmt.Sprintf("%s: %s %s", t.Source, d.Code, d.Message))
		}

		if len(t.Dropped) > 0 {
			parts := make([]string, 0, len(t.Dropped))
			for _, code := range pipeline.RowCodes {
				if n := t.Dropped[code]; n > 0 {
					parts = append(parts, fmt.Sprintf("%s x%d", code, n))
				}
			}
			issues["SR04"] = append(issues["SR04"], fmt.Sprintf("%s: %s", t.Source, strings.Join(parts, ", ")))
		}

		if t.Resolution == nil {
			continue
		}
		var defaulted []string
		for _, role := range []schema.Role{schema.RoleEffect, schema.RoleStdErr, schema.RoleSampleSize} {
			if t.Resolution.Via[role] == schema.PassPositionalDefault {
				defaulted = append(defaulted, role.String())
			}
		}
		if len(defaulted) > 0 {
			issues["CD01"] = append(issues["CD01"], fmt.Sprintf("%s: positional default for %s", t.Source, strings.Join(defaulted, ", ")))
		}
		switch t.Resolution.Via[schema.RoleSampleSize] {
		case schema.PassSampleSizeLoose, schema.PassSampleSizeAny:
			col := t.Resolution.Roles.SampleSize
			header := ""
			if col < len(t.Header) {
				header = t.Header[col]
			}
			issues["CD02"] = append(issues["CD02"], fmt.Sprintf("%s: sample size guessed from column %q", t.Source, header))
		}
	}
}

func buildDoctorOutput(summary ProjectSummary, issues map[string][]string) *DoctorOutput {
	healthChecks := make([]HealthCheck, 0, len(healthRules))
	issueCount := 0

	for _, rule := range healthRules {
		details := issues[rule.ID]
		status := "pass"
		if len(details) > 0 {
			if rule.Error {
				status = "error"
			} else {
				status = "warn"
			}
		}
		issueCount += len(details)

		healthChecks = append(healthChecks, HealthCheck{
			CheckID:    rule.ID,
			Name:       rule.Name,
			Group:      rule.Group,
			Status:     status,
			IssueCount: len(details),
			Details:    details,
		})
	}

	// Sort health checks by group then by check ID
	sort.SliceStable(healthChecks, func(i, j int) bool {
		if healthChecks[i].Group != healthChecks[j].Group {
			return groupOrder(healthChecks[i].Group) < groupOrder(healthChecks[j].Group)
		}
		return healthChecks[i].CheckID < healthChecks[j].CheckID
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks, summary.Sources),
		Recommendations: generateRecommendations(healthChecks),
		IssueCount:      issueCount,
	}
}

func groupOrder(group string) int {
	switch group {
	case "setup":
		return 0
	case "sources":
		return 1
	default:
		return 2
	}
}

// calculateHealthScore computes a health score from 0-100.
// The scoring weights:
// - Each issue reduces points, errors count double
// - More sources means issues have less individual impact
func calculateHealthScore(checks []HealthCheck, sourceCount int) int {
	if len(checks) == 0 {
		return 100
	}

	// Base score starts at 100
	score := 100.0

	// Calculate penalty per issue
	basePenalty := 5.0
	if sourceCount > 10 {
		basePenalty = 3.0
	}
	if sourceCount > 50 {
		basePenalty = 2.0
	}
	if sourceCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2 // Errors count double
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	// Clamp to 0-100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}

		rec := getRecommendation(check.CheckID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(checkID string) string {
	switch checkID {
	case "SU01":
		return "Run 'mockcsv init' to pin the project settings in mockcsv.yaml"
	case "SU02":
		return "Create the source directory or point --source-dir at your tables"
	case "SU03":
		return "Check that the state_path directory is writable, or pass --no-history"
	case "SR01":
		return "Add source tables or adjust the extensions and exclude settings"
	case "SR02":
		return "Re-export unreadable tables as delimited text with a header and data rows"
	case "SR03":
		return "Check numeric formatting in tables that lose every row"
	case "SR04":
		return "Inspect tables with dropped rows using 'mockcsv inspect <file>'"
	case "CD01":
		return "Rename headers to effect, se, n and study so columns are detected by name"
	case "CD02":
		return "Name the sample size column explicitly (n, nobs or sample_size)"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header.Render("mockcsv Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Project Summary
	r.Println(styles.Header.Render("Project Summary"))
	r.Printf("   Sources: %d | Usable: %d | Rejected: %d\n", out.Summary.Sources, out.Summary.Usable, out.Summary.Rejected)
	r.Printf("   Rows: %d kept of %d read\n", out.Summary.KeptRows, out.Summary.Rows)
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.Render("✓")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.Render("✗")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.CheckID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# mockcsv Health Report")
	r.Println("")

	// Project Summary
	r.Println("## Project Summary")
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Printf("- **Config**: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("- **Source directory**: %s\n", out.Summary.SourceDir)
	r.Printf("- **Sources**: %d\n", out.Summary.Sources)
	r.Printf("- **Usable**: %d\n", out.Summary.Usable)
	r.Printf("- **Rejected**: %d\n", out.Summary.Rejected)
	r.Printf("- **Rows**: %d kept of %d read\n", out.Summary.KeptRows, out.Summary.Rows)
	r.Println("")

	// Health Checks
	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s: %s", status, check.CheckID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	// Health Score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
