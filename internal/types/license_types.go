package types

import "strings"

// ResolutionSource records which metadata source produced a LicenseRecord.
type ResolutionSource string

// ResolutionSource values, in resolution priority order.
const (
	SourcePackageMetadata  ResolutionSource = "package_metadata"
	SourceRepo             ResolutionSource = "source_repo"
	SourceRegistryFallback ResolutionSource = "registry_fallback"
	SourceUnresolved       ResolutionSource = "unresolved"
)

// LicenseRecord is the raw license metadata found for one dependency.
// An unresolved record has Source == SourceUnresolved and no RawLicense.
type LicenseRecord struct {
	Dependency Dependency       `json:"dependency"`
	RawLicense []string         `json:"raw_license,omitempty"`
	Source     ResolutionSource `json:"resolution_source"`
	// Detail names the concrete origin, e.g. "METADATA" or "https://pypi.org".
	Detail string `json:"detail,omitempty"`
}

// Resolved reports whether any source produced license data.
func (r LicenseRecord) Resolved() bool {
	return r.Source != SourceUnresolved && len(r.RawLicense) > 0
}

// Raw joins RawLicense for display.
func (r LicenseRecord) Raw() string {
	return strings.Join(r.RawLicense, "; ")
}

// ExpressionKind classifies the shape of a normalized license expression.
type ExpressionKind string

// ExpressionKind values.
const (
	KindSingle      ExpressionKind = "single"
	KindDual        ExpressionKind = "dual"
	KindConjunctive ExpressionKind = "conjunctive"
	KindDisjunctive ExpressionKind = "disjunctive"
	KindUnknown     ExpressionKind = "unknown"
)

// LicenseOp is the operator of an interior expression node.
type LicenseOp string

// LicenseOp values. OpLeaf marks an identifier node.
const (
	OpLeaf LicenseOp = ""
	OpAnd  LicenseOp = "AND"
	OpOr   LicenseOp = "OR"
)

// LicenseNode is a parsed license expression.
// Leaves carry a canonical ID, or an empty ID and the Raw operand when unrecognized.
type LicenseNode struct {
	Op       LicenseOp      `json:"op,omitempty"`
	ID       string         `json:"id,omitempty"`
	Raw      string         `json:"raw,omitempty"`
	Children []*LicenseNode `json:"children,omitempty"`
}

// Known reports whether a leaf resolved to a canonical identifier.
func (n *LicenseNode) Known() bool {
	return n.Op == OpLeaf && n.ID != ""
}

// NormalizedLicense is the canonical form of a LicenseRecord's raw license.
type NormalizedLicense struct {
	Identifiers []string       `json:"identifiers"`
	Kind        ExpressionKind `json:"expression_kind"`
	// Expression is the canonical SPDX-style rendering, empty when unknown.
	Expression string       `json:"expression,omitempty"`
	Tree       *LicenseNode `json:"-"`
}

// IsUnknown reports whether nothing in the raw license was recognized.
func (n NormalizedLicense) IsUnknown() bool {
	return n.Kind == KindUnknown
}
