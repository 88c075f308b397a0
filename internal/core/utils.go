package core

import (
	"fmt"
	"path/filepath"

	"github.com/EmundoT/license-auditor/internal/types"
)

// FilterVerdicts returns the verdicts whose classification is one of classes,
// in report order.
func FilterVerdicts(verdicts []types.Verdict, classes ...types.Classification) []types.Verdict {
	var out []types.Verdict
	for _, v := range verdicts {
		for _, c := range classes {
			if v.Classification == c {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// ProjectName derives a display name from the project root directory.
//
// Examples:
//
//	ProjectName("/src/my-app")  => "my-app"
//	ProjectName("/")            => "project"
func ProjectName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	name := filepath.Base(abs)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "project"
	}
	return name
}

// Pluralize returns the singular or plural form based on count.
// Examples:
//
//	Pluralize(1, "package", "packages") => "1 package"
//	Pluralize(2, "package", "packages") => "2 packages"
//	Pluralize(0, "package", "packages") => "0 packages"
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
