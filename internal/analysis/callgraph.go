package analysis

import (
	"regexp"

	"github.com/dehvCurtis/RustDefend/internal/rustsrc"
)

// CheckKind is a security check a function body may perform. The set
// is closed; each kind is recognized by fixed syntactic patterns.
type CheckKind int

const (
	CheckSigner CheckKind = iota
	CheckOwner
	CheckInput
)

// FunctionInfo summarizes one function for caller-side reasoning:
// the names it calls and which checks its own body exhibits.
type FunctionInfo struct {
	Calls              []string
	HasSignerCheck     bool
	HasOwnerCheck      bool
	HasInputValidation bool
}

// CallGraph maps function name to info. Edges are name-only and
// unresolved; this is an approximation, not points-to analysis.
type CallGraph map[string]*FunctionInfo

var callRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Control-flow keywords that look like calls to the call regex.
var notCalls = map[string]bool{
	"if": true, "match": true, "while": true, "for": true,
	"loop": true, "fn": true, "return": true, "let": true,
	"unsafe": true, "move": true, "else": true, "impl": true,
}

// BuildCallGraph extracts per-function callees and exhibited checks
// from a parsed file.
func BuildCallGraph(f *rustsrc.File) CallGraph {
	graph := make(CallGraph, len(f.Functions))
	for i := range f.Functions {
		fn := &f.Functions[i]
		graph[fn.Name] = analyzeFunction(fn)
	}
	return graph
}

func analyzeFunction(fn *rustsrc.Function) *FunctionInfo {
	info := &FunctionInfo{
		HasSignerCheck: fn.BodyContainsAny("is_signer", "has_signer"),
		HasOwnerCheck: fn.BodyContainsAny("owner") &&
			fn.BodyContainsAny("program_id", "key"),
		HasInputValidation: fn.BodyContainsAny(
			"assert!", "assert_eq!", "assert_ne!", "require!", "ensure!"),
	}

	seen := map[string]bool{}
	for _, m := range callRe.FindAllStringSubmatch(fn.Body, -1) {
		name := m[1]
		if notCalls[name] || seen[name] {
			continue
		}
		seen[name] = true
		info.Calls = append(info.Calls, name)
	}
	return info
}

func (info *FunctionInfo) hasCheck(check CheckKind) bool {
	switch check {
	case CheckSigner:
		return info.HasSignerCheck
	case CheckOwner:
		return info.HasOwnerCheck
	case CheckInput:
		return info.HasInputValidation
	}
	return false
}

func (info *FunctionInfo) callsTarget(target string) bool {
	for _, c := range info.Calls {
		if c == target {
			return true
		}
	}
	return false
}

// maxCallerDepth bounds reverse reachability. Trades recall for
// bounded cost and guarantees termination under call cycles.
const maxCallerDepth = 5

// CallerHasCheck reports whether some caller of target, up to
// maxCallerDepth levels away, performs the given check itself. A
// function with no discoverable caller never benefits.
func CallerHasCheck(graph CallGraph, target string, check CheckKind) bool {
	visited := map[string]bool{}
	return hasCheckInCallers(graph, target, check, visited, 0)
}

func hasCheckInCallers(graph CallGraph, target string, check CheckKind, visited map[string]bool, depth int) bool {
	if depth >= maxCallerDepth {
		return false
	}
	for name, info := range graph {
		if name == target || visited[name] || !info.callsTarget(target) {
			continue
		}
		if info.hasCheck(check) {
			return true
		}
		visited[name] = true
		if hasCheckInCallers(graph, name, check, visited, depth+1) {
			return true
		}
	}
	return false
}

// ProjectCallGraph is the cross-file union of per-file graphs, built
// single-threaded in whole-project mode and shared read-only with the
// parallel dispatch phase afterwards.
type ProjectCallGraph struct {
	Functions CallGraph
}

func NewProjectCallGraph() *ProjectCallGraph {
	return &ProjectCallGraph{Functions: make(CallGraph)}
}

// Merge unions one file's graph in by bare function name. Same-named
// functions across files are conflated: callees union, checks OR.
func (p *ProjectCallGraph) Merge(g CallGraph) {
	for name, info := range g {
		existing, ok := p.Functions[name]
		if !ok {
			merged := *info
			merged.Calls = append([]string(nil), info.Calls...)
			p.Functions[name] = &merged
			continue
		}
		existing.HasSignerCheck = existing.HasSignerCheck || info.HasSignerCheck
		existing.HasOwnerCheck = existing.HasOwnerCheck || info.HasOwnerCheck
		existing.HasInputValidation = existing.HasInputValidation || info.HasInputValidation
		for _, c := range info.Calls {
			if !existing.callsTarget(c) {
				existing.Calls = append(existing.Calls, c)
			}
		}
	}
}
