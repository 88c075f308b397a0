package license

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmundoT/license-auditor/internal/types"
)

func TestNormalize_MITAliases(t *testing.T) {
	for _, raw := range []string{
		"MIT",
		"mit",
		"MIT License",
		"The MIT License",
		"Expat",
		"License :: OSI Approved :: MIT License",
	} {
		t.Run(raw, func(t *testing.T) {
			got := NormalizeString(raw)
			assert.Equal(t, []string{"MIT"}, got.Identifiers)
			assert.Equal(t, types.KindSingle, got.Kind)
			assert.Equal(t, "MIT", got.Expression)
		})
	}
}

func TestNormalize_ApacheAliases(t *testing.T) {
	for _, raw := range []string{
		"Apache 2.0",
		"apache2",
		"Apache Software License",
		"Apache License, Version 2.0",
		"Apache-2.0 License",
		"License :: OSI Approved :: Apache Software License",
	} {
		t.Run(raw, func(t *testing.T) {
			got := NormalizeString(raw)
			assert.Equal(t, []string{"Apache-2.0"}, got.Identifiers)
			assert.Equal(t, types.KindSingle, got.Kind)
		})
	}
}

func TestNormalize_Expressions(t *testing.T) {
	tests := []struct {
		raw        string
		ids        []string
		kind       types.ExpressionKind
		expression string
	}{
		{"MIT OR Apache-2.0", []string{"Apache-2.0", "MIT"}, types.KindDisjunctive, "MIT OR Apache-2.0"},
		{"mit or apache-2.0", []string{"Apache-2.0", "MIT"}, types.KindDisjunctive, "MIT OR Apache-2.0"},
		{"MIT/Apache-2.0", []string{"Apache-2.0", "MIT"}, types.KindDisjunctive, "MIT OR Apache-2.0"},
		{"GPL-3.0 AND MIT", []string{"GPL-3.0", "MIT"}, types.KindConjunctive, "GPL-3.0 AND MIT"},
		{"(MIT OR Apache-2.0) AND BSD-3-Clause", []string{"Apache-2.0", "BSD-3-Clause", "MIT"}, types.KindConjunctive, "(MIT OR Apache-2.0) AND BSD-3-Clause"},
		{"MIT OR (MIT OR ISC)", []string{"ISC", "MIT"}, types.KindDisjunctive, "MIT OR ISC"},
		{"GPL-3.0-only", []string{"GPL-3.0"}, types.KindSingle, "GPL-3.0"},
		{"GPL-2.0+", []string{"GPL-2.0-or-later"}, types.KindSingle, "GPL-2.0-or-later"},
		{"LGPL-2.1-or-later", []string{"LGPL-2.1-or-later"}, types.KindSingle, "LGPL-2.1-or-later"},
		{"GPL-2.0 WITH Classpath-exception-2.0", []string{"GPL-2.0 WITH Classpath-exception-2.0"}, types.KindSingle, "GPL-2.0 WITH Classpath-exception-2.0"},
		{"MIT AND Proprietary", []string{"MIT"}, types.KindConjunctive, "MIT AND Proprietary"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := NormalizeString(tt.raw)
			assert.Equal(t, tt.ids, got.Identifiers)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.expression, got.Expression)
			require.NotNil(t, got.Tree)
		})
	}
}

func TestNormalize_UnknownLeafStaysInTree(t *testing.T) {
	got := NormalizeString("MIT AND Proprietary")
	require.NotNil(t, got.Tree)
	require.Len(t, got.Tree.Children, 2)
	assert.True(t, got.Tree.Children[0].Known())
	assert.False(t, got.Tree.Children[1].Known())
	assert.Equal(t, "Proprietary", got.Tree.Children[1].Raw)
}

func TestNormalize_Unknown(t *testing.T) {
	for name, raw := range map[string][]string{
		"nil":              nil,
		"empty string":     {""},
		"custom":           {"Some Custom License"},
		"bare osi":         {"License :: OSI Approved"},
		"proprietary":      {"License :: Other/Proprietary License"},
		"unbalanced paren": {"(MIT OR"},
	} {
		t.Run(name, func(t *testing.T) {
			got := Normalize(raw)
			assert.Equal(t, types.KindUnknown, got.Kind)
			assert.Empty(t, got.Identifiers)
			assert.Empty(t, got.Expression)
		})
	}
}

func TestNormalize_Dual(t *testing.T) {
	got := Normalize([]string{
		"License :: OSI Approved :: MIT License",
		"License :: OSI Approved :: Apache Software License",
	})
	assert.Equal(t, types.KindDual, got.Kind)
	assert.Equal(t, []string{"Apache-2.0", "MIT"}, got.Identifiers)
	assert.Equal(t, "MIT OR Apache-2.0", got.Expression)
}

func TestNormalize_DuplicateStringsCollapse(t *testing.T) {
	got := Normalize([]string{"MIT", "MIT License", "License :: OSI Approved :: MIT License"})
	assert.Equal(t, types.KindSingle, got.Kind)
	assert.Equal(t, []string{"MIT"}, got.Identifiers)
}

func TestNormalize_Deterministic(t *testing.T) {
	for _, raw := range []string{
		"MIT OR GPL-3.0",
		"(Apache-2.0 AND BSD-3-Clause) OR MIT",
		"Some Custom License",
		"GPLv3+",
	} {
		first := NormalizeString(raw)
		second := NormalizeString(raw)
		assert.Equal(t, first, second, raw)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{
		"apache2 or mit",
		"GPL-3.0-only AND BSD License",
		"GPL-2.0+",
	} {
		first := NormalizeString(raw)
		again := NormalizeString(first.Expression)
		assert.Equal(t, first.Identifiers, again.Identifiers, raw)
		assert.Equal(t, first.Kind, again.Kind, raw)
		assert.Equal(t, first.Expression, again.Expression, raw)
	}
}

func TestNormalize_LicenseBody(t *testing.T) {
	body := `MIT License

Copyright (c) 2024 Example

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software.

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.`

	got := NormalizeString(body)
	assert.Equal(t, []string{"MIT"}, got.Identifiers)
	assert.Equal(t, types.KindSingle, got.Kind)
}

func TestCanonicalize(t *testing.T) {
	tests := map[string]string{
		"GPLv3+":                                "GPL-3.0-or-later",
		"BSD License":                           "BSD-3-Clause",
		"GNU General Public License v3 (GPLv3)": "GPL-3.0",
		"GNU Lesser General Public License v2 or later (LGPLv2+)": "LGPL-2.0-or-later",
		"mpl-2.0":            "MPL-2.0",
		"PSF":                "PSF-2.0",
		"ISC License (ISCL)": "ISC",
		"bsd-3-clause":       "BSD-3-Clause",
	}
	for in, want := range tests {
		got, ok := Canonicalize(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := Canonicalize("definitely not a license")
	assert.False(t, ok)
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("mit"))
	assert.True(t, IsCanonical("Apache-2.0"))
	assert.False(t, IsCanonical("Apache 2.0"))
	assert.Contains(t, CanonicalIDs(), "BSD-2-Clause")
}
