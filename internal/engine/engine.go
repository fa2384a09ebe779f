// Package engine orchestrates a scan: source discovery, ecosystem
// resolution, parallel detector dispatch, inline suppression, manifest
// auditing, and the incremental cache.
package engine

import (
	"context"
	"errors"
	"os"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dehvCurtis/RustDefend/internal/analysis"
	"github.com/dehvCurtis/RustDefend/internal/cache"
	"github.com/dehvCurtis/RustDefend/internal/config"
	"github.com/dehvCurtis/RustDefend/internal/detectors"
	"github.com/dehvCurtis/RustDefend/internal/logging"
	"github.com/dehvCurtis/RustDefend/internal/model"
	"github.com/dehvCurtis/RustDefend/internal/rules"
	"github.com/dehvCurtis/RustDefend/internal/rustsrc"
	"github.com/dehvCurtis/RustDefend/internal/workspace"
)

// ErrNoSourceFiles distinguishes "nothing to scan" from scan failure;
// the CLI maps it to a usage error.
var ErrNoSourceFiles = errors.New("no Rust source files found")

// Scanner is configured once, then Scan may be called. The registry is
// immutable after construction.
type Scanner struct {
	registry      *detectors.Registry
	cfg           *config.Project
	ecosystems    []model.Ecosystem
	severities    []model.Severity
	minConfidence model.Confidence
	detectorIDs   []string
	crossFile     bool
	cachePath     string
}

// Result is one completed scan. Findings are sorted by file, line,
// then detector id so repeat runs byte-compare equal.
type Result struct {
	Findings     []model.Finding
	FilesScanned int
	CacheHits    int
	Elapsed      time.Duration
}

func NewScanner() *Scanner {
	return &Scanner{
		registry: detectors.NewRegistry(),
		cfg:      &config.Project{},
	}
}

// WithConfig installs project-level settings. Config thresholds apply
// after the scan regardless of the other options; when both a config
// and an option threshold are set, the stricter one wins.
func (s *Scanner) WithConfig(cfg *config.Project) *Scanner {
	if cfg != nil {
		s.cfg = cfg
	}
	return s
}

func (s *Scanner) WithEcosystems(ecos []model.Ecosystem) *Scanner {
	s.ecosystems = ecos
	return s
}

func (s *Scanner) WithSeverities(sevs []model.Severity) *Scanner {
	s.severities = sevs
	return s
}

func (s *Scanner) WithMinConfidence(c model.Confidence) *Scanner {
	s.minConfidence = c
	return s
}

func (s *Scanner) WithDetectorIDs(ids []string) *Scanner {
	s.detectorIDs = ids
	return s
}

func (s *Scanner) WithCrossFile(on bool) *Scanner {
	s.crossFile = on
	return s
}

// WithCache enables the incremental cache at the given path.
func (s *Scanner) WithCache(path string) *Scanner {
	s.cachePath = path
	return s
}

// WithCustomRules registers user rules alongside the built-ins.
func (s *Scanner) WithCustomRules(custom []rules.CustomRule) *Scanner {
	for _, d := range rules.Detectors(custom) {
		s.registry.Register(d)
	}
	return s
}

// List describes the registered detectors for the given ecosystems;
// nil means all.
func (s *Scanner) List(ecos []model.Ecosystem) []detectors.Info {
	return s.registry.List(ecos)
}

func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	files := discoverFiles(root, s.cfg, root)
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}

	wm := workspace.Build(root)
	fallback := s.fallbackEcosystems(root)

	var scanCache *cache.ScanCache
	if s.cachePath != "" {
		scanCache = cache.Load(s.cachePath)
	}

	var project *analysis.ProjectCallGraph
	units := map[string]*rustsrc.File{}
	if s.crossFile {
		// Graph construction stays single-threaded; dispatch only ever
		// reads the finished graph.
		project = analysis.NewProjectCallGraph()
		for _, path := range files {
			unit, ok := parseUnit(path)
			if !ok {
				continue
			}
			units[path] = unit
			project.Merge(analysis.BuildCallGraph(unit))
		}
	}

	perFile := make([][]model.Finding, len(files))
	cacheHits := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mtime, ok := fileMtime(path)
			if scanCache != nil && ok {
				if cached, hit := scanCache.Lookup(path, mtime); hit {
					perFile[i] = cached
					cacheHits[i] = true
					return nil
				}
			}
			perFile[i] = s.scanFile(path, units[path], wm, fallback, project)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{FilesScanned: len(files)}
	for i, findings := range perFile {
		if cacheHits[i] {
			result.CacheHits++
		} else if scanCache != nil {
			if mtime, ok := fileMtime(files[i]); ok {
				scanCache.Store(files[i], mtime, findings)
			}
		}
		result.Findings = append(result.Findings, findings...)
	}

	if scanCache != nil {
		if err := cache.Save(scanCache, s.cachePath); err != nil {
			logging.Logger.Warnw("cache write failed", "path", s.cachePath, "error", err)
		}
	}

	// Manifest detectors run once per Cargo.toml, outside the source
	// file pass and the cache.
	for _, manifestPath := range discoverManifests(root) {
		for _, md := range s.registry.ManifestDetectors() {
			if !s.detectorSelected(md) {
				continue
			}
			result.Findings = append(result.Findings, md.DetectManifest(manifestPath)...)
		}
	}

	result.Findings = s.applyConfigFilters(result.Findings)
	result.Findings = s.applyConfidenceFilter(result.Findings)
	sortFindings(result.Findings)
	result.Elapsed = time.Since(start)
	return result, nil
}

// scanFile runs the per-source-file detector pass. Detectors with a
// wildcard ecosystem run once, on the file's first active ecosystem.
func (s *Scanner) scanFile(path string, unit *rustsrc.File, wm *workspace.Map, fallback []model.Ecosystem, project *analysis.ProjectCallGraph) []model.Finding {
	if unit == nil {
		var ok bool
		unit, ok = parseUnit(path)
		if !ok {
			return nil
		}
	}

	ecosystems := wm.ForFile(path, fallback)
	if s.ecosystems != nil {
		ecosystems = intersect(ecosystems, s.ecosystems)
	}
	if len(ecosystems) == 0 {
		return nil
	}

	graph := analysis.BuildCallGraph(unit)

	var findings []model.Finding
	wildcardDone := false
	for _, eco := range ecosystems {
		sctx := analysis.NewScanContext(unit, eco, graph, project)
		for _, d := range s.registry.GetDetectors([]model.Ecosystem{eco}, s.severities, s.detectorIDs) {
			if d.Ecosystem() == "" {
				if wildcardDone {
					continue
				}
			} else if d.Ecosystem() != eco {
				continue
			}
			for _, f := range d.Detect(sctx) {
				if sctx.IsSuppressed(f.Line, f.DetectorID) {
					continue
				}
				findings = append(findings, f)
			}
		}
		wildcardDone = true
	}
	return findings
}

// fallbackEcosystems resolves what to assume for crates with no chain
// dependency: the explicit filter, then the root manifest, then all.
func (s *Scanner) fallbackEcosystems(root string) []model.Ecosystem {
	if s.ecosystems != nil {
		return s.ecosystems
	}
	if detected := workspace.DetectEcosystems(root); len(detected) > 0 {
		return detected
	}
	return model.AllEcosystems()
}

func (s *Scanner) detectorSelected(d detectors.Detector) bool {
	if s.severities != nil && !severityIn(s.severities, d.Severity()) {
		return false
	}
	if s.detectorIDs != nil && !idIn(s.detectorIDs, d.ID()) {
		return false
	}
	return true
}

func (s *Scanner) applyConfigFilters(findings []model.Finding) []model.Finding {
	minSev, haveSev := model.ParseSeverity(s.cfg.MinSeverity)
	minConf, haveConf := model.ParseConfidence(s.cfg.MinConfidence)
	if len(s.cfg.Ignore) == 0 && !haveSev && !haveConf {
		return findings
	}
	out := findings[:0]
	for _, f := range findings {
		if s.cfg.IgnoresDetector(f.DetectorID) {
			continue
		}
		if haveSev && !model.SeverityGTE(f.Severity, minSev) {
			continue
		}
		if haveConf && !model.ConfidenceGTE(f.Confidence, minConf) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// applyConfidenceFilter enforces the CLI threshold after cache merge
// so cached entries stay unfiltered on disk.
func (s *Scanner) applyConfidenceFilter(findings []model.Finding) []model.Finding {
	if s.minConfidence == "" {
		return findings
	}
	out := findings[:0]
	for _, f := range findings {
		if model.ConfidenceGTE(f.Confidence, s.minConfidence) {
			out = append(out, f)
		}
	}
	return out
}

func sortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.DetectorID < b.DetectorID
	})
}

func parseUnit(path string) (*rustsrc.File, bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		logging.Logger.Debugw("skipping unreadable file", "path", path, "error", err)
		return nil, false
	}
	unit, err := rustsrc.ParseFile(path, string(source))
	if err != nil {
		logging.Logger.Debugw("skipping unparseable file", "path", path, "error", err)
		return nil, false
	}
	return unit, true
}

func fileMtime(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.ModTime().Unix(), true
}

func intersect(a, b []model.Ecosystem) []model.Ecosystem {
	var out []model.Ecosystem
	for _, e := range a {
		for _, f := range b {
			if e == f {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func severityIn(list []model.Severity, s model.Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func idIn(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
