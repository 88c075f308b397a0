// Package license normalizes raw license strings and expressions into canonical
// SPDX-style identifiers.
package license

import "strings"

// canonicalIDs is the identifier set normalized output is drawn from.
var canonicalIDs = []string{
	"0BSD",
	"AFL-3.0",
	"AGPL-3.0",
	"AGPL-3.0-or-later",
	"Apache-1.1",
	"Apache-2.0",
	"Artistic-2.0",
	"BlueOak-1.0.0",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"BSD-3-Clause-Clear",
	"BSD-4-Clause",
	"BSL-1.0",
	"CC-BY-3.0",
	"CC-BY-4.0",
	"CC-BY-SA-4.0",
	"CC0-1.0",
	"CDDL-1.0",
	"CECILL-2.1",
	"EPL-1.0",
	"EPL-2.0",
	"EUPL-1.2",
	"GPL-2.0",
	"GPL-2.0-or-later",
	"GPL-3.0",
	"GPL-3.0-or-later",
	"HPND",
	"ISC",
	"LGPL-2.0",
	"LGPL-2.0-or-later",
	"LGPL-2.1",
	"LGPL-2.1-or-later",
	"LGPL-3.0",
	"LGPL-3.0-or-later",
	"MIT",
	"MIT-0",
	"MPL-1.1",
	"MPL-2.0",
	"MS-PL",
	"NCSA",
	"OFL-1.1",
	"OpenSSL",
	"PostgreSQL",
	"PSF-2.0",
	"Python-2.0",
	"SSPL-1.0",
	"Unicode-DFS-2016",
	"Unlicense",
	"UPL-1.0",
	"WTFPL",
	"Zlib",
	"ZPL-2.1",
}

// aliases maps lower-cased license names seen in package metadata onto canonical IDs.
// Trove classifier names (the last " :: " segment) are listed here too.
var aliases = map[string]string{
	// MIT
	"mit license":                        "MIT",
	"the mit license":                    "MIT",
	"mit licence":                        "MIT",
	"expat":                              "MIT",
	"expat license":                      "MIT",
	"mit/expat":                          "MIT",
	"mit no attribution license (mit-0)": "MIT-0",
	"mit no attribution":                 "MIT-0",
	"bsd zero clause license (0bsd)":     "0BSD",
	"zero-clause bsd":                    "0BSD",
	"academic free license (afl)":        "AFL-3.0",
	"ncsa license":                       "NCSA",
	"university of illinois/ncsa open source license": "NCSA",

	// Apache
	"apache":                               "Apache-2.0",
	"apache 2":                             "Apache-2.0",
	"apache 2.0":                           "Apache-2.0",
	"apache-2":                             "Apache-2.0",
	"apache2":                              "Apache-2.0",
	"apache2.0":                            "Apache-2.0",
	"apache v2":                            "Apache-2.0",
	"apache license":                       "Apache-2.0",
	"apache license 2.0":                   "Apache-2.0",
	"apache license, version 2.0":          "Apache-2.0",
	"apache license version 2.0":           "Apache-2.0",
	"apache license v2":                    "Apache-2.0",
	"apache license v2.0":                  "Apache-2.0",
	"apache software license":              "Apache-2.0",
	"apache software license 2.0":          "Apache-2.0",
	"apache software license (apache-2.0)": "Apache-2.0",
	"asl 2.0":                              "Apache-2.0",
	"asl2":                                 "Apache-2.0",
	"apache license 1.1":                   "Apache-1.1",

	// BSD
	"bsd":                    "BSD-3-Clause",
	"bsd license":            "BSD-3-Clause",
	"new bsd":                "BSD-3-Clause",
	"new bsd license":        "BSD-3-Clause",
	"modified bsd":           "BSD-3-Clause",
	"modified bsd license":   "BSD-3-Clause",
	"revised bsd":            "BSD-3-Clause",
	"bsd-3":                  "BSD-3-Clause",
	"bsd 3-clause":           "BSD-3-Clause",
	"bsd 3 clause":           "BSD-3-Clause",
	"3-clause bsd":           "BSD-3-Clause",
	"3-clause bsd license":   "BSD-3-Clause",
	"bsd 3-clause license":   "BSD-3-Clause",
	"bsd-2":                  "BSD-2-Clause",
	"bsd 2-clause":           "BSD-2-Clause",
	"bsd 2 clause":           "BSD-2-Clause",
	"2-clause bsd":           "BSD-2-Clause",
	"2-clause bsd license":   "BSD-2-Clause",
	"bsd 2-clause license":   "BSD-2-Clause",
	"simplified bsd":         "BSD-2-Clause",
	"simplified bsd license": "BSD-2-Clause",
	"freebsd":                "BSD-2-Clause",
	"bsd-4":                  "BSD-4-Clause",
	"original bsd":           "BSD-4-Clause",

	// GPL family. Unversioned names map to the any-version form.
	"gpl":                                   "GPL-2.0-or-later",
	"gnu gpl":                               "GPL-2.0-or-later",
	"gnu general public license":            "GPL-2.0-or-later",
	"gnu general public license (gpl)":      "GPL-2.0-or-later",
	"gplv2":                                 "GPL-2.0",
	"gpl v2":                                "GPL-2.0",
	"gpl-2":                                 "GPL-2.0",
	"gpl2":                                  "GPL-2.0",
	"gnu gpl v2":                            "GPL-2.0",
	"gnu general public license v2":         "GPL-2.0",
	"gnu general public license v2 (gplv2)": "GPL-2.0",
	"gnu general public license v2 or later (gplv2+)": "GPL-2.0-or-later",
	"gplv3":                                 "GPL-3.0",
	"gpl v3":                                "GPL-3.0",
	"gpl-3":                                 "GPL-3.0",
	"gpl3":                                  "GPL-3.0",
	"gnu gpl v3":                            "GPL-3.0",
	"gnu general public license v3":         "GPL-3.0",
	"gnu general public license v3 (gplv3)": "GPL-3.0",
	"gnu general public license v3 or later (gplv3+)": "GPL-3.0-or-later",
	"lgpl":                              "LGPL-2.0-or-later",
	"gnu lgpl":                          "LGPL-2.0-or-later",
	"gnu lesser general public license": "LGPL-2.0-or-later",
	"gnu library or lesser general public license (lgpl)": "LGPL-2.0-or-later",
	"lgplv2":    "LGPL-2.0",
	"lgplv2.1":  "LGPL-2.1",
	"lgpl v2.1": "LGPL-2.1",
	"lgpl-2":    "LGPL-2.0",
	"lgpl2":     "LGPL-2.0",
	"gnu lesser general public license v2 (lgplv2)":           "LGPL-2.0",
	"gnu lesser general public license v2 or later (lgplv2+)": "LGPL-2.0-or-later",
	"lgplv3":  "LGPL-3.0",
	"lgpl v3": "LGPL-3.0",
	"lgpl-3":  "LGPL-3.0",
	"lgpl3":   "LGPL-3.0",
	"gnu lesser general public license v3 (lgplv3)":           "LGPL-3.0",
	"gnu lesser general public license v3 or later (lgplv3+)": "LGPL-3.0-or-later",
	"agpl":                                 "AGPL-3.0",
	"agplv3":                               "AGPL-3.0",
	"agpl v3":                              "AGPL-3.0",
	"agpl-3":                               "AGPL-3.0",
	"gnu affero general public license v3": "AGPL-3.0",
	"gnu affero general public license v3 or later (agplv3+)": "AGPL-3.0-or-later",

	// Weak copyleft and others
	"mpl":                                  "MPL-2.0",
	"mpl2":                                 "MPL-2.0",
	"mpl 2.0":                              "MPL-2.0",
	"mpl-2":                                "MPL-2.0",
	"mozilla public license":               "MPL-2.0",
	"mozilla public license 2.0":           "MPL-2.0",
	"mozilla public license 2.0 (mpl 2.0)": "MPL-2.0",
	"mozilla public license 1.1 (mpl 1.1)": "MPL-1.1",
	"epl":                                  "EPL-2.0",
	"eclipse public license":               "EPL-2.0",
	"eclipse public license 2.0":           "EPL-2.0",
	"eclipse public license 2.0 (epl-2.0)": "EPL-2.0",
	"eclipse public license 1.0 (epl-1.0)": "EPL-1.0",
	"cddl":                                 "CDDL-1.0",
	"common development and distribution license 1.0 (cddl-1.0)": "CDDL-1.0",
	"european union public licence 1.2 (eupl 1.2)":               "EUPL-1.2",
	"eupl 1.2":   "EUPL-1.2",
	"cecill-2.1": "CECILL-2.1",
	"cea cnrs inria logiciel libre license, version 2.1 (cecill-2.1)": "CECILL-2.1",
	"sspl":                       "SSPL-1.0",
	"server side public license": "SSPL-1.0",

	// Python
	"psf":                                "PSF-2.0",
	"psfl":                               "PSF-2.0",
	"psf license":                        "PSF-2.0",
	"python software foundation license": "PSF-2.0",
	"python software foundation license version 2": "PSF-2.0",
	"python license (cnri python license)":         "Python-2.0",

	// Permissive and public domain
	"isc license":               "ISC",
	"isc license (iscl)":        "ISC",
	"iscl":                      "ISC",
	"the unlicense":             "Unlicense",
	"the unlicense (unlicense)": "Unlicense",
	"unlicensed":                "Unlicense",
	"cc0":                       "CC0-1.0",
	"cc0 1.0":                   "CC0-1.0",
	"cc0 1.0 universal":         "CC0-1.0",
	"cc0 1.0 universal (cc0 1.0) public domain dedication": "CC0-1.0",
	"zlib license":                         "Zlib",
	"zlib/libpng license":                  "Zlib",
	"boost":                                "BSL-1.0",
	"boost software license":               "BSL-1.0",
	"boost software license 1.0 (bsl-1.0)": "BSL-1.0",
	"wtfpl license":                        "WTFPL",
	"artistic license":                     "Artistic-2.0",
	"historical permission notice and disclaimer (hpnd)": "HPND",
	"sil open font license 1.1 (ofl-1.1)":                "OFL-1.1",
	"blue oak model license (blueoak-1.0.0)":             "BlueOak-1.0.0",
	"universal permissive license (upl)":                 "UPL-1.0",
	"microsoft public license":                           "MS-PL",
	"zope public license":                                "ZPL-2.1",
	"postgresql license":                                 "PostgreSQL",
	"unicode-dfs-2016":                                   "Unicode-DFS-2016",
}

// canonicalByLower maps lower-cased canonical IDs onto their canonical spelling.
var canonicalByLower = func() map[string]string {
	m := make(map[string]string, len(canonicalIDs))
	for _, id := range canonicalIDs {
		m[strings.ToLower(id)] = id
	}
	return m
}()

// IsCanonical reports whether id is one of the canonical identifiers.
func IsCanonical(id string) bool {
	_, ok := canonicalByLower[strings.ToLower(id)]
	return ok
}

// CanonicalIDs returns the identifier set normalized output is drawn from.
func CanonicalIDs() []string {
	out := make([]string, len(canonicalIDs))
	copy(out, canonicalIDs)
	return out
}
