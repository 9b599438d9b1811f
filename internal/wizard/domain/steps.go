package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type StepID string

const (
	StepProjectInitiation StepID = "project_initiation"
	StepEducation         StepID = "education"
	StepAsset             StepID = "asset"
	StepCompliance        StepID = "compliance"
	StepTokenomics        StepID = "tokenomics"
	StepDistribution      StepID = "distribution"
)

// Steps is the linear wizard order.
var Steps = []StepID{
	StepProjectInitiation,
	StepEducation,
	StepAsset,
	StepCompliance,
	StepTokenomics,
	StepDistribution,
}

// stepSections lists the sections each step writes.
var stepSections = map[StepID][]Section{
	StepProjectInitiation: {SectionProjectInfo},
	StepEducation:         nil,
	StepAsset:             {SectionProperty},
	StepCompliance:        {SectionCompliance, SectionJurisdiction},
	StepTokenomics:        {SectionProperty, SectionTokenAllocation},
	StepDistribution:      {SectionDistribution},
}

const minDescriptionLength = 20

func ParseStep(s string) (StepID, error) {
	id := StepID(s)
	if StepIndex(id) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return id, nil
}

// StepIndex returns the position of a step or -1.
func StepIndex(id StepID) int {
	for i, s := range Steps {
		if s == id {
			return i
		}
	}
	return -1
}

// SectionsOf returns the sections owned by a step.
func SectionsOf(id StepID) []Section {
	return stepSections[id]
}

// IsStepValid evaluates the validity predicate of one step.
func IsStepValid(id StepID, r ProjectRecord) bool {
	switch id {
	case StepProjectInitiation:
		return ProjectInitiationValid(r.ProjectInfo)
	case StepEducation:
		return true
	case StepAsset:
		return AssetValid(r.Property)
	case StepCompliance:
		return ComplianceValid(r.Compliance)
	case StepTokenomics:
		return TokenomicsValid(r.Property)
	case StepDistribution:
		return DistributionValid(r.Distribution)
	}
	return false
}

// ComputeValidity evaluates every step against the record.
func ComputeValidity(r ProjectRecord) map[StepID]bool {
	out := make(map[StepID]bool, len(Steps))
	for _, id := range Steps {
		out[id] = IsStepValid(id, r)
	}
	return out
}

// ProjectInitiationValid treats a whitespace-only project name as missing.
func ProjectInitiationValid(p ProjectInfo) bool {
	return strings.TrimSpace(p.ProjectName) != "" &&
		p.ProjectGoal != "" &&
		utf8.RuneCountInString(p.Description) > minDescriptionLength
}

// AssetValid treats a whitespace-only title or location as missing.
func AssetValid(p Property) bool {
	return strings.TrimSpace(p.Title) != "" &&
		p.TotalValue > 0 &&
		strings.TrimSpace(p.Location) != ""
}

func ComplianceValid(c Compliance) bool {
	return c.KYCProvider != "" && c.RegFramework != ""
}

// TokenomicsValid accepts an annual yield of exactly 0; only an unset yield fails.
func TokenomicsValid(p Property) bool {
	return p.TokenPrice > 0 && p.TotalTokens > 0 && p.AnnualYield != nil
}

func DistributionValid(d Distribution) bool {
	return d.TargetInvestorType != "" && d.MinInvestment > 0
}
