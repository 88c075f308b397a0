package license

import "strings"

// DetectFromText recognizes a license from the body of a LICENSE or COPYING file.
// Returns "" when no known license text is found.
func DetectFromText(content string) string {
	lower := strings.Join(strings.Fields(strings.ToLower(content)), " ")

	// More specific families first: LGPL and AGPL texts mention the GPL.
	if strings.Contains(lower, "gnu affero general public license") {
		return withLater(lower, "AGPL-3.0")
	}

	if strings.Contains(lower, "gnu lesser general public license") ||
		strings.Contains(lower, "gnu library general public license") {
		switch {
		case strings.Contains(lower, "version 3"):
			return withLater(lower, "LGPL-3.0")
		case strings.Contains(lower, "version 2.1"):
			return withLater(lower, "LGPL-2.1")
		case strings.Contains(lower, "version 2"):
			return withLater(lower, "LGPL-2.0")
		}
		return "LGPL-2.0-or-later"
	}

	if strings.Contains(lower, "gnu general public license") {
		switch {
		case strings.Contains(lower, "version 3"):
			return withLater(lower, "GPL-3.0")
		case strings.Contains(lower, "version 2"):
			return withLater(lower, "GPL-2.0")
		}
		return "GPL-2.0-or-later"
	}

	if strings.Contains(lower, "apache license") {
		if strings.Contains(lower, "version 2.0") {
			return "Apache-2.0"
		}
		if strings.Contains(lower, "version 1.1") {
			return "Apache-1.1"
		}
	}

	if strings.Contains(lower, "mozilla public license") {
		if strings.Contains(lower, "version 1.1") {
			return "MPL-1.1"
		}
		return "MPL-2.0"
	}

	if strings.Contains(lower, "eclipse public license") {
		if strings.Contains(lower, "v 1.0") || strings.Contains(lower, "version 1.0") {
			return "EPL-1.0"
		}
		return "EPL-2.0"
	}

	if strings.Contains(lower, "server side public license") {
		return "SSPL-1.0"
	}

	mitGrant := strings.Contains(lower, "permission is hereby granted, free of charge") &&
		strings.Contains(lower, "without restriction")
	if mitGrant && !strings.Contains(lower, "permission notice shall be included") {
		return "MIT-0"
	}
	if mitGrant || strings.Contains(lower, "mit license") {
		return "MIT"
	}

	if strings.Contains(lower, "redistribution and use in source and binary forms") {
		switch {
		case strings.Contains(lower, "all advertising materials mentioning features"):
			return "BSD-4-Clause"
		case strings.Contains(lower, "neither the name") ||
			strings.Contains(lower, "3. the name") ||
			strings.Contains(lower, "may be used to endorse or promote"):
			return "BSD-3-Clause"
		}
		return "BSD-2-Clause"
	}

	if strings.Contains(lower, "isc license") ||
		(strings.Contains(lower, "permission to use, copy, modify, and/or distribute this software") &&
			strings.Contains(lower, "the software is provided \"as is\"")) {
		return "ISC"
	}

	if strings.Contains(lower, "this is free and unencumbered software released into the public domain") {
		return "Unlicense"
	}

	if strings.Contains(lower, "cc0 1.0 universal") ||
		(strings.Contains(lower, "creative commons") && strings.Contains(lower, "public domain dedication")) {
		return "CC0-1.0"
	}

	if strings.Contains(lower, "boost software license") {
		return "BSL-1.0"
	}

	if strings.Contains(lower, "python software foundation license") {
		return "PSF-2.0"
	}

	if strings.Contains(lower, "this software is provided 'as-is', without any express or implied warranty") &&
		strings.Contains(lower, "altered source versions must be plainly marked") {
		return "Zlib"
	}

	if strings.Contains(lower, "do what the fuck you want") {
		return "WTFPL"
	}

	return ""
}

func withLater(lower, id string) string {
	if strings.Contains(lower, "or (at your option) any later version") {
		return id + "-or-later"
	}
	return id
}
