package types

// AuditReport is the ordered list of verdicts for one run plus summary counts.
// Verdicts follow dependency declaration order.
type AuditReport struct {
	SchemaVersion string       `json:"schema_version"`
	GeneratedAt   string       `json:"generated_at"`
	Project       string       `json:"project"`
	Manifests     []string     `json:"manifests"`
	PolicyName    string       `json:"policy"`
	Summary       AuditSummary `json:"summary"`
	Verdicts      []Verdict    `json:"verdicts"`
}

// AuditSummary contains per-classification counts.
type AuditSummary struct {
	Total    int    `json:"total"`
	Allowed  int    `json:"allowed"`
	Denied   int    `json:"denied"`
	Warn     int    `json:"warn"`
	Unknown  int    `json:"unknown"`
	Excepted int    `json:"excepted"`
	Result   string `json:"result"` // PASS, WARN, FAIL
}

// Audit result constants for AuditSummary.Result.
const (
	AuditResultPass = "PASS"
	AuditResultFail = "FAIL"
	AuditResultWarn = "WARN"
)

// Count returns the number of verdicts with the given classification.
func (s AuditSummary) Count(c Classification) int {
	switch c {
	case ClassAllowed:
		return s.Allowed
	case ClassDenied:
		return s.Denied
	case ClassWarn:
		return s.Warn
	default:
		return s.Unknown
	}
}
