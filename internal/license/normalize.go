package license

import (
	"sort"
	"strings"

	"github.com/EmundoT/license-auditor/internal/types"
)

// freeTextThreshold is the length past which a single raw string is treated as a
// pasted license body instead of an expression.
const freeTextThreshold = 120

const classifierPrefix = "License :: "

// Normalize maps raw license strings onto canonical identifiers.
// Normalize is pure: the same input always yields an equal result, and unrecognized
// input yields KindUnknown with an empty identifier set instead of an error.
func Normalize(raw []string) types.NormalizedLicense {
	var trees []*types.LicenseNode
	seen := make(map[string]bool)
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		tree := normalizeOne(r)
		key := render(tree)
		if seen[key] {
			continue
		}
		seen[key] = true
		trees = append(trees, tree)
	}

	if len(trees) == 0 {
		return unknown()
	}

	var root *types.LicenseNode
	dual := false
	if len(trees) == 1 {
		root = trees[0]
	} else {
		root = &types.LicenseNode{Op: types.OpOr, Children: trees}
		dual = true
	}

	ids := Identifiers(root)
	if len(ids) == 0 {
		return unknown()
	}

	kind := types.KindSingle
	switch {
	case dual:
		kind = types.KindDual
	case root.Op == types.OpOr:
		kind = types.KindDisjunctive
	case root.Op == types.OpAnd:
		kind = types.KindConjunctive
	}

	return types.NormalizedLicense{
		Identifiers: ids,
		Kind:        kind,
		Expression:  render(root),
		Tree:        root,
	}
}

// NormalizeString is Normalize for a single raw string.
func NormalizeString(raw string) types.NormalizedLicense {
	return Normalize([]string{raw})
}

func unknown() types.NormalizedLicense {
	return types.NormalizedLicense{Identifiers: []string{}, Kind: types.KindUnknown}
}

// normalizeOne turns one raw string into a canonical tree.
func normalizeOne(raw string) *types.LicenseNode {
	if id, ok := Canonicalize(raw); ok {
		return &types.LicenseNode{ID: id, Raw: raw}
	}
	if IsClassifier(raw) {
		return &types.LicenseNode{Raw: raw}
	}

	if len(raw) > freeTextThreshold || strings.ContainsAny(raw, "\r\n") {
		if id := DetectFromText(raw); id != "" {
			return &types.LicenseNode{ID: id, Raw: firstLine(raw)}
		}
		return &types.LicenseNode{Raw: firstLine(raw)}
	}

	tree, err := parseExpression(raw)
	if err != nil {
		return &types.LicenseNode{Raw: raw}
	}
	return simplify(resolveLeaves(tree))
}

func resolveLeaves(n *types.LicenseNode) *types.LicenseNode {
	if n.Op == types.OpLeaf {
		if id, ok := Canonicalize(n.Raw); ok {
			return &types.LicenseNode{ID: id, Raw: n.Raw}
		}
		return &types.LicenseNode{Raw: n.Raw}
	}
	children := make([]*types.LicenseNode, len(n.Children))
	for i, c := range n.Children {
		children[i] = resolveLeaves(c)
	}
	return &types.LicenseNode{Op: n.Op, Children: children}
}

// simplify flattens nested nodes of the same operator and drops duplicate operands.
func simplify(n *types.LicenseNode) *types.LicenseNode {
	if n.Op == types.OpLeaf {
		return n
	}
	var children []*types.LicenseNode
	seen := make(map[string]bool)
	var add func(c *types.LicenseNode)
	add = func(c *types.LicenseNode) {
		c = simplify(c)
		if c.Op == n.Op {
			for _, gc := range c.Children {
				add(gc)
			}
			return
		}
		key := render(c)
		if seen[key] {
			return
		}
		seen[key] = true
		children = append(children, c)
	}
	for _, c := range n.Children {
		add(c)
	}
	if len(children) == 1 {
		return children[0]
	}
	return &types.LicenseNode{Op: n.Op, Children: children}
}

// Identifiers returns the sorted set of canonical IDs found in a tree.
func Identifiers(n *types.LicenseNode) []string {
	set := make(map[string]bool)
	var walk func(*types.LicenseNode)
	walk = func(n *types.LicenseNode) {
		if n == nil {
			return
		}
		if n.Known() {
			set[n.ID] = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Canonicalize resolves a single license name to a canonical identifier.
// It tries the alias table, the canonical set, trove classifiers, version suffixes
// ("-only", "+", "-or-later") and a trailing " license" or parenthetical.
func Canonicalize(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	if base, exc, ok := cutFold(name, " with "); ok {
		id, ok := Canonicalize(base)
		if !ok {
			return "", false
		}
		return id + " WITH " + strings.TrimSpace(exc), true
	}

	if strings.HasPrefix(name, classifierPrefix) {
		return fromClassifier(name)
	}

	lower := strings.ToLower(name)
	if id, ok := lookup(lower); ok {
		return id, true
	}

	switch {
	case strings.HasSuffix(lower, "-only"):
		return Canonicalize(name[:len(name)-len("-only")])
	case strings.HasSuffix(lower, "+"):
		return orLater(name[:len(name)-1])
	case strings.HasSuffix(lower, "-or-later"):
		return orLater(name[:len(name)-len("-or-later")])
	case strings.HasSuffix(lower, " or later"):
		return orLater(name[:len(name)-len(" or later")])
	}

	trimmed := strings.TrimPrefix(lower, "the ")
	for _, suffix := range []string{" license", " licence", " licensed"} {
		trimmed = strings.TrimSuffix(trimmed, suffix)
	}
	if trimmed != lower {
		if id, ok := lookup(trimmed); ok {
			return id, true
		}
	}

	// "GNU General Public License v3 (GPLv3)" style: try the parenthetical.
	if open := strings.LastIndex(lower, "("); open >= 0 && strings.HasSuffix(lower, ")") {
		inner := lower[open+1 : len(lower)-1]
		if id, ok := lookup(strings.TrimSpace(inner)); ok {
			return id, true
		}
		if id, ok := lookup(strings.TrimSpace(lower[:open])); ok {
			return id, true
		}
	}

	return "", false
}

func lookup(lower string) (string, bool) {
	if id, ok := aliases[lower]; ok {
		return id, true
	}
	if id, ok := canonicalByLower[lower]; ok {
		return id, true
	}
	return "", false
}

func orLater(base string) (string, bool) {
	id, ok := Canonicalize(base)
	if !ok {
		return "", false
	}
	id = strings.TrimSuffix(id, "-or-later")
	return id + "-or-later", true
}

// fromClassifier handles trove classifiers such as
// "License :: OSI Approved :: MIT License".
func fromClassifier(classifier string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(classifier, classifierPrefix), " :: ")
	last := strings.TrimSpace(parts[len(parts)-1])
	if strings.EqualFold(last, "OSI Approved") {
		return "", false
	}
	return Canonicalize(last)
}

// IsClassifier reports whether s is a trove license classifier.
func IsClassifier(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), classifierPrefix)
}

func cutFold(s, sep string) (before, after string, found bool) {
	i := strings.Index(strings.ToLower(s), sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
