package model

import "strings"

// Ecosystem identifies the smart-contract platform a detector targets.
type Ecosystem string

const (
	EcoSolana   Ecosystem = "solana"
	EcoCosmWasm Ecosystem = "cosmwasm"
	EcoNear     Ecosystem = "near"
	EcoInk      Ecosystem = "ink"
)

// AllEcosystems is the fallback when no manifest declares a platform
// and the user forced nothing: run everything.
func AllEcosystems() []Ecosystem {
	return []Ecosystem{EcoSolana, EcoCosmWasm, EcoNear, EcoInk}
}

// ParseEcosystem accepts the loose aliases the CLI takes.
func ParseEcosystem(s string) (Ecosystem, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solana", "sol":
		return EcoSolana, true
	case "cosmwasm", "cw", "cosmos":
		return EcoCosmWasm, true
	case "near":
		return EcoNear, true
	case "ink", "ink!", "polkadot":
		return EcoInk, true
	}
	return "", false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit":
		return SeverityCritical, true
	case "high", "h":
		return SeverityHigh, true
	case "medium", "med", "m":
		return SeverityMedium, true
	case "low", "l":
		return SeverityLow, true
	}
	return "", false
}

func SeverityGTE(a, b Severity) bool {
	return severityRank[a] >= severityRank[b]
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

var confidenceRank = map[Confidence]int{
	ConfidenceLow:    1,
	ConfidenceMedium: 2,
	ConfidenceHigh:   3,
}

func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return ConfidenceHigh, true
	case "medium", "med", "m":
		return ConfidenceMedium, true
	case "low", "l":
		return ConfidenceLow, true
	}
	return "", false
}

func ConfidenceGTE(a, b Confidence) bool {
	return confidenceRank[a] >= confidenceRank[b]
}

// Finding is one reported defect. Produced only by detectors and
// treated as an immutable value afterwards.
type Finding struct {
	DetectorID     string     `json:"detectorId"`
	Name           string     `json:"name"`
	Severity       Severity   `json:"severity"`
	Confidence     Confidence `json:"confidence"`
	Message        string     `json:"message"`
	File           string     `json:"file"`
	Line           int        `json:"line"`
	Column         int        `json:"column"`
	Snippet        string     `json:"snippet"`
	Recommendation string     `json:"recommendation"`
	Ecosystem      Ecosystem  `json:"ecosystem"`
}
