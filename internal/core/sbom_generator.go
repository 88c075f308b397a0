package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"
	spdx23 "github.com/spdx/tools-golang/spdx/v2/v2_3"

	"github.com/EmundoT/license-auditor/internal/hostdetect"
	"github.com/EmundoT/license-auditor/internal/purl"
	"github.com/EmundoT/license-auditor/internal/sbom"
	"github.com/EmundoT/license-auditor/internal/types"
	"github.com/EmundoT/license-auditor/internal/version"
)

// SBOMFormat represents supported SBOM output formats
type SBOMFormat string

const (
	// SBOMFormatCycloneDX is the CycloneDX 1.5 JSON format
	SBOMFormatCycloneDX SBOMFormat = "cyclonedx"
	// SBOMFormatSPDX is the SPDX 2.3 JSON format
	SBOMFormatSPDX SBOMFormat = "spdx"
)

// CycloneDX property names carrying audit results
const (
	propClassification = ToolName + ":classification"
	propRule           = ToolName + ":rule"
	propSource         = ToolName + ":resolution_source"
	propScope          = ToolName + ":scope"
	propRawLicense     = ToolName + ":raw_license"
)

// SBOMGenerator renders an audit report as a Software Bill of Materials
type SBOMGenerator struct {
	// newUUID is replaceable for deterministic tests.
	newUUID func() string
}

// NewSBOMGenerator creates a new SBOMGenerator
func NewSBOMGenerator() *SBOMGenerator {
	return &SBOMGenerator{newUUID: func() string { return uuid.New().String() }}
}

// Generate creates an SBOM in the specified format. The report is not modified.
func (g *SBOMGenerator) Generate(report *types.AuditReport, format SBOMFormat) ([]byte, error) {
	switch format {
	case SBOMFormatCycloneDX:
		return g.generateCycloneDX(report)
	case SBOMFormatSPDX:
		return g.generateSPDX(report)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func identityOf(dep types.Dependency) sbom.PackageIdentity {
	return sbom.PackageIdentity{Ecosystem: string(dep.Ecosystem), Name: dep.Name, Version: dep.Version}
}

func reportTimestamp(report *types.AuditReport) string {
	if report.GeneratedAt != "" {
		return report.GeneratedAt
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// generateCycloneDX creates a CycloneDX 1.5 JSON SBOM
func (g *SBOMGenerator) generateCycloneDX(report *types.AuditReport) ([]byte, error) {
	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + g.newUUID()
	bom.Version = 1

	bom.Metadata = &cdx.Metadata{
		Timestamp: reportTimestamp(report),
		Tools: &cdx.ToolsChoice{
			Tools: &[]cdx.Tool{
				{
					Vendor:  ToolName,
					Name:    ToolName,
					Version: version.GetVersion(),
				},
			},
		},
		Component: &cdx.Component{
			Type:    cdx.ComponentTypeApplication,
			Name:    sbom.ValidateProjectName(report.Project),
			Version: "local",
		},
	}

	components := make([]cdx.Component, 0, len(report.Verdicts))
	for i := range report.Verdicts {
		components = append(components, g.buildCycloneDXComponent(&report.Verdicts[i]))
	}
	bom.Components = &components

	var buf strings.Builder
	encoder := cdx.NewBOMEncoder(&buf, cdx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	if err := encoder.EncodeVersion(bom, cdx.SpecVersion1_5); err != nil {
		return nil, fmt.Errorf("encode CycloneDX: %w", err)
	}

	// The encoder ends with a newline; emitters add their own.
	return []byte(strings.TrimRight(buf.String(), "\n")), nil
}

// buildCycloneDXComponent creates a CycloneDX component from a verdict
func (g *SBOMGenerator) buildCycloneDXComponent(v *types.Verdict) cdx.Component {
	dep := v.Dependency
	component := cdx.Component{
		Type:       cdx.ComponentTypeLibrary,
		BOMRef:     sbom.GenerateBOMRef(identityOf(dep)),
		Name:       dep.Name,
		Version:    dep.Version,
		PackageURL: packageURL(dep),
		Scope:      cdx.ScopeRequired,
	}
	if dep.Scope.Has(types.ScopeDev) {
		component.Scope = cdx.ScopeOptional
	}

	switch {
	case v.Normalized.Kind == types.KindSingle && len(v.Normalized.Identifiers) == 1 &&
		!strings.Contains(v.Normalized.Identifiers[0], " WITH "):
		// License.ID takes a bare SPDX id; "X WITH exception" goes through Expression.
		component.Licenses = &cdx.Licenses{
			{License: &cdx.License{ID: v.Normalized.Identifiers[0]}},
		}
	case v.Normalized.Expression != "" && !v.Normalized.IsUnknown():
		component.Licenses = &cdx.Licenses{
			{Expression: v.Normalized.Expression},
		}
	case v.Record.Resolved():
		component.Licenses = &cdx.Licenses{
			{License: &cdx.License{Name: v.Record.Raw()}},
		}
	}

	// Add external reference for sources on a known git host; registry tarballs are not VCS
	if isGitHosted(dep.Source) {
		component.ExternalReferences = &[]cdx.ExternalReference{
			{
				Type: cdx.ERTypeVCS,
				URL:  hostdetect.NormalizeRepoURL(dep.Source),
			},
		}
	}

	properties := []cdx.Property{
		{Name: propClassification, Value: string(v.Classification)},
		{Name: propScope, Value: dep.Scope.String()},
		{Name: propSource, Value: string(v.Record.Source)},
	}
	if v.RuleMatched != "" {
		properties = append(properties, cdx.Property{Name: propRule, Value: v.RuleMatched})
	}
	if raw := v.Record.Raw(); raw != "" {
		properties = append(properties, cdx.Property{Name: propRawLicense, Value: raw})
	}
	component.Properties = &properties

	return component
}

// generateSPDX creates an SPDX 2.3 JSON SBOM
func (g *SBOMGenerator) generateSPDX(report *types.AuditReport) ([]byte, error) {
	projectName := sbom.ValidateProjectName(report.Project)

	doc := &spdx23.Document{
		SPDXVersion:       spdx.Version,
		DataLicense:       spdx.DataLicense,
		SPDXIdentifier:    common.ElementID(sbom.SPDXDocumentID),
		DocumentName:      projectName + "-license-audit",
		DocumentNamespace: sbom.BuildSPDXNamespace("", projectName, g.newUUID()),
		CreationInfo: &spdx23.CreationInfo{
			Created: reportTimestamp(report),
			Creators: []common.Creator{
				{CreatorType: "Tool", Creator: ToolName + "-" + version.GetVersion()},
			},
		},
	}

	packages := make([]*spdx23.Package, 0, len(report.Verdicts))
	relationships := make([]*spdx23.Relationship, 0, len(report.Verdicts))

	for i := range report.Verdicts {
		pkg := g.buildSPDXPackage(&report.Verdicts[i])
		packages = append(packages, pkg)

		// RefB must match the package's SPDXID exactly (including "Package-" prefix)
		relationships = append(relationships, &spdx23.Relationship{
			RefA:         common.MakeDocElementID("", sbom.SPDXDocumentID),
			RefB:         common.MakeDocElementID("", string(pkg.PackageSPDXIdentifier)),
			Relationship: "DESCRIBES",
		})
	}

	doc.Packages = packages
	doc.Relationships = relationships

	return spdxToJSON(doc)
}

// isGitHosted reports whether a lockfile source points at a repository on a known git host.
// Registry tarballs and index URLs do not.
func isGitHosted(source string) bool {
	info := hostdetect.FromSource(source)
	return info != nil && info.Provider != hostdetect.ProviderUnknown
}

// packageURL names where a dependency was fetched from: the repository
// for git-hosted sources, pinned to the locked commit when there is one,
// and the registry otherwise.
func packageURL(dep types.Dependency) string {
	if isGitHosted(dep.Source) {
		ref := dep.Version
		if _, commit, ok := strings.Cut(dep.Source, "#"); ok && commit != "" {
			ref = commit
		}
		if p := purl.FromGitURL(hostdetect.NormalizeRepoURL(dep.Source), ref); p != nil {
			return p.String()
		}
	}
	return purl.FromPackage(string(dep.Ecosystem), dep.Name, dep.Version).String()
}

// buildSPDXPackage creates an SPDX package from a verdict
func (g *SBOMGenerator) buildSPDXPackage(v *types.Verdict) *spdx23.Package {
	dep := v.Dependency

	downloadLocation := sbom.NoAssertion
	if strings.HasPrefix(dep.Source, "https://") || strings.HasPrefix(dep.Source, "http://") {
		downloadLocation = dep.Source
	} else if repoURL := hostdetect.NormalizeRepoURL(dep.Source); repoURL != "" {
		downloadLocation = "git+" + repoURL
	}

	pkg := &spdx23.Package{
		PackageName:             dep.Name,
		PackageSPDXIdentifier:   common.ElementID(sbom.GenerateSPDXID(identityOf(dep))),
		PackageVersion:          dep.Version,
		PackageDownloadLocation: downloadLocation,
		FilesAnalyzed:           false,
		PackageCopyrightText:    sbom.NoAssertion,
		PackageLicenseDeclared:  sbom.NoAssertion,
		PackageLicenseConcluded: sbom.NoAssertion,
		PackageComment: sbom.VerdictComment(
			string(v.Classification), v.RuleMatched, string(v.Record.Source), v.Reason),
	}

	// Unknown leaves render as free text, which is not a valid SPDX expression.
	if !v.Normalized.IsUnknown() && v.Normalized.Expression != "" && allLeavesKnown(v.Normalized.Tree) {
		pkg.PackageLicenseDeclared = v.Normalized.Expression
		pkg.PackageLicenseConcluded = v.Normalized.Expression
	}

	if p := packageURL(dep); p != "" {
		pkg.PackageExternalReferences = []*spdx23.PackageExternalReference{
			{
				Category: common.CategoryPackageManager,
				RefType:  "purl",
				Locator:  p,
			},
		}
	}

	return pkg
}

func allLeavesKnown(n *types.LicenseNode) bool {
	if n == nil {
		return false
	}
	if n.Op == types.OpLeaf {
		return n.Known()
	}
	for _, c := range n.Children {
		if !allLeavesKnown(c) {
			return false
		}
	}
	return true
}

// spdxJSON is the JSON representation of an SPDX document
// Using explicit struct to ensure proper JSON field names per SPDX 2.3 spec
type spdxJSON struct {
	SPDXVersion       string                 `json:"spdxVersion"`
	DataLicense       string                 `json:"dataLicense"`
	SPDXID            string                 `json:"SPDXID"`
	Name              string                 `json:"name"`
	DocumentNamespace string                 `json:"documentNamespace"`
	CreationInfo      spdxCreationInfoJSON   `json:"creationInfo"`
	Packages          []spdxPackageJSON      `json:"packages"`
	Relationships     []spdxRelationshipJSON `json:"relationships"`
}

type spdxCreationInfoJSON struct {
	Created  string   `json:"created"`
	Creators []string `json:"creators"`
}

type spdxPackageJSON struct {
	SPDXID           string                `json:"SPDXID"`
	Name             string                `json:"name"`
	VersionInfo      string                `json:"versionInfo,omitempty"`
	DownloadLocation string                `json:"downloadLocation"`
	LicenseDeclared  string                `json:"licenseDeclared"`
	LicenseConcluded string                `json:"licenseConcluded"`
	CopyrightText    string                `json:"copyrightText"`
	FilesAnalyzed    bool                  `json:"filesAnalyzed"`
	ExternalRefs     []spdxExternalRefJSON `json:"externalRefs,omitempty"`
	Comment          string                `json:"comment,omitempty"`
}

type spdxExternalRefJSON struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

type spdxRelationshipJSON struct {
	SPDXElementID      string `json:"spdxElementId"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSPDXElement string `json:"relatedSpdxElement"`
}

// spdxToJSON converts an SPDX document to JSON bytes using proper struct marshaling
func spdxToJSON(doc *spdx23.Document) ([]byte, error) {
	creators := make([]string, 0, len(doc.CreationInfo.Creators))
	for _, c := range doc.CreationInfo.Creators {
		creators = append(creators, fmt.Sprintf("%s: %s", c.CreatorType, c.Creator))
	}

	packages := make([]spdxPackageJSON, 0, len(doc.Packages))
	for _, pkg := range doc.Packages {
		p := spdxPackageJSON{
			SPDXID:           sbom.FormatSPDXRef(string(pkg.PackageSPDXIdentifier)),
			Name:             pkg.PackageName,
			VersionInfo:      pkg.PackageVersion,
			DownloadLocation: pkg.PackageDownloadLocation,
			LicenseDeclared:  pkg.PackageLicenseDeclared,
			LicenseConcluded: pkg.PackageLicenseConcluded,
			CopyrightText:    pkg.PackageCopyrightText,
			FilesAnalyzed:    pkg.FilesAnalyzed,
			Comment:          pkg.PackageComment,
		}

		if len(pkg.PackageExternalReferences) > 0 {
			refs := make([]spdxExternalRefJSON, 0, len(pkg.PackageExternalReferences))
			for _, ref := range pkg.PackageExternalReferences {
				refs = append(refs, spdxExternalRefJSON{
					ReferenceCategory: string(ref.Category),
					ReferenceType:     ref.RefType,
					ReferenceLocator:  ref.Locator,
				})
			}
			p.ExternalRefs = refs
		}

		packages = append(packages, p)
	}

	relationships := make([]spdxRelationshipJSON, 0, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		relationships = append(relationships, spdxRelationshipJSON{
			SPDXElementID:      sbom.FormatSPDXRef(string(rel.RefA.ElementRefID)),
			RelationshipType:   rel.Relationship,
			RelatedSPDXElement: sbom.FormatSPDXRef(string(rel.RefB.ElementRefID)),
		})
	}

	jsonDoc := spdxJSON{
		SPDXVersion:       doc.SPDXVersion,
		DataLicense:       doc.DataLicense,
		SPDXID:            sbom.FormatSPDXRef(string(doc.SPDXIdentifier)),
		Name:              doc.DocumentName,
		DocumentNamespace: doc.DocumentNamespace,
		CreationInfo: spdxCreationInfoJSON{
			Created:  doc.CreationInfo.Created,
			Creators: creators,
		},
		Packages:      packages,
		Relationships: relationships,
	}

	return json.MarshalIndent(jsonDoc, "", "  ")
}
