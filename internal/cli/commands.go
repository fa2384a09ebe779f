// Package cli defines the cobra commands and maps scan outcomes to
// process exit codes: 0 clean, 1 findings, 2 usage or scan failure.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dehvCurtis/RustDefend/internal/baseline"
	"github.com/dehvCurtis/RustDefend/internal/config"
	"github.com/dehvCurtis/RustDefend/internal/engine"
	"github.com/dehvCurtis/RustDefend/internal/logging"
	"github.com/dehvCurtis/RustDefend/internal/model"
	"github.com/dehvCurtis/RustDefend/internal/report"
	"github.com/dehvCurtis/RustDefend/internal/rules"
	"github.com/dehvCurtis/RustDefend/internal/tui"
)

// ErrFindingsDetected signals exit code 1 without an error message.
var ErrFindingsDetected = errors.New("findings detected")

func AddCommands(root *cobra.Command) {
	root.AddCommand(newScanCmd())
	root.AddCommand(newListDetectorsCmd())
}

type scanFlags struct {
	ecosystem    string
	severity     string
	confidence   string
	detector     string
	format       string
	quiet        bool
	baselinePath string
	saveBaseline string
	configPath   string
	rulesPath    string
	incremental  bool
	cachePath    string
	crossFile    bool
	useTUI       bool
	debug        bool
	logFile      string
}

func newScanCmd() *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a Rust contract source tree for security defects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runScan(cmd, path, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.ecosystem, "ecosystem", "", "Only run detectors for these ecosystems (comma-separated: solana,cosmwasm,near,ink)")
	f.StringVar(&flags.severity, "severity", "", "Only run detectors with these severities (comma-separated)")
	f.StringVar(&flags.confidence, "confidence", "", "Drop findings below this confidence (high|medium|low)")
	f.StringVar(&flags.detector, "detector", "", "Only run these detector IDs (comma-separated)")
	f.StringVarP(&flags.format, "format", "f", "text", "Output format: text|json|sarif")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress output; exit code carries the result")
	f.StringVar(&flags.baselinePath, "baseline", "", "Suppress findings recorded in this baseline file")
	f.StringVar(&flags.saveBaseline, "save-baseline", "", "Write current findings as a baseline file")
	f.StringVar(&flags.configPath, "config", "", "Project config file (default: <path>/.rustdefend.toml)")
	f.StringVar(&flags.rulesPath, "rules", "", "Custom rules TOML file")
	f.BoolVar(&flags.incremental, "incremental", false, "Reuse cached findings for unchanged files")
	f.StringVar(&flags.cachePath, "cache-path", "", "Incremental cache location (default: <path>/.rustdefend.cache.json)")
	f.BoolVar(&flags.crossFile, "cross-file", false, "Propagate security checks across files in the project")
	f.BoolVar(&flags.useTUI, "tui", false, "Browse findings interactively")
	f.BoolVar(&flags.debug, "debug", false, "Verbose console logging")
	f.StringVar(&flags.logFile, "log-file", "", "Also write logs to this rotating file")
	return cmd
}

func runScan(cmd *cobra.Command, path string, flags *scanFlags) error {
	if err := logging.Init(flags.debug, flags.logFile); err != nil {
		return err
	}
	defer func() { _ = logging.Sync() }()

	scanner := engine.NewScanner().WithConfig(loadConfig(path, flags.configPath))

	if flags.rulesPath != "" {
		custom, err := rules.LoadRules(flags.rulesPath)
		if err != nil {
			logging.Logger.Warnw("ignoring unreadable rules file", "path", flags.rulesPath, "error", err)
		} else {
			logging.Logger.Infow("loaded custom rules", "count", len(custom), "path", flags.rulesPath)
			scanner.WithCustomRules(custom)
		}
	}

	if flags.ecosystem != "" {
		ecos, err := parseEcosystems(flags.ecosystem)
		if err != nil {
			return err
		}
		scanner.WithEcosystems(ecos)
	}
	if flags.severity != "" {
		sevs, err := parseSeverities(flags.severity)
		if err != nil {
			return err
		}
		scanner.WithSeverities(sevs)
	}
	if flags.confidence != "" {
		conf, ok := model.ParseConfidence(flags.confidence)
		if !ok {
			return fmt.Errorf("unknown confidence level %q", flags.confidence)
		}
		scanner.WithMinConfidence(conf)
	}
	if flags.detector != "" {
		scanner.WithDetectorIDs(splitUpper(flags.detector))
	}
	scanner.WithCrossFile(flags.crossFile)
	if flags.incremental {
		scanner.WithCache(cachePath(path, flags.cachePath))
	}

	result, err := scanner.Scan(cmd.Context(), path)
	if err != nil {
		return err
	}
	findings := result.Findings
	logging.Logger.Debugw("scan complete",
		"files", result.FilesScanned, "cacheHits", result.CacheHits,
		"findings", len(findings), "elapsed", result.Elapsed)

	if flags.saveBaseline != "" {
		if err := baseline.Save(findings, path, flags.saveBaseline); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Baseline saved with %d findings to %s\n",
			len(findings), flags.saveBaseline)
	}

	if flags.baselinePath != "" {
		bl, err := baseline.Load(flags.baselinePath)
		if err != nil {
			// An unusable baseline suppresses nothing; every finding
			// stays fresh.
			logging.Logger.Warnw("ignoring unreadable baseline", "path", flags.baselinePath, "error", err)
			bl = &baseline.Baseline{Version: 1}
		}
		fresh, known := baseline.Diff(findings, bl, path)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d findings suppressed by baseline\n", len(known))
		findings = fresh
	}

	if flags.quiet {
		if len(findings) > 0 {
			return ErrFindingsDetected
		}
		return nil
	}

	if flags.useTUI {
		if err := tui.Run(findings); err != nil {
			return err
		}
	} else {
		output, err := report.ForFormat(flags.format).Render(findings)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}

	if len(findings) > 0 {
		return ErrFindingsDetected
	}
	return nil
}

func loadConfig(scanRoot, explicit string) *config.Project {
	if explicit != "" {
		cfg, err := config.LoadFile(explicit)
		if err != nil {
			logging.Logger.Warnw("ignoring unreadable config", "path", explicit, "error", err)
			return &config.Project{}
		}
		return cfg
	}
	return config.LoadOrDefault(scanRoot)
}

func cachePath(scanRoot, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(scanRoot, ".rustdefend.cache.json")
}

func parseEcosystems(raw string) ([]model.Ecosystem, error) {
	var out []model.Ecosystem
	for _, part := range strings.Split(raw, ",") {
		eco, ok := model.ParseEcosystem(part)
		if !ok {
			return nil, fmt.Errorf("unknown ecosystem %q", strings.TrimSpace(part))
		}
		out = append(out, eco)
	}
	return out, nil
}

func parseSeverities(raw string) ([]model.Severity, error) {
	var out []model.Severity
	for _, part := range strings.Split(raw, ",") {
		sev, ok := model.ParseSeverity(part)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q", strings.TrimSpace(part))
		}
		out = append(out, sev)
	}
	return out, nil
}

func splitUpper(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
