package artifact

import (
	"regexp"
	"strings"
)

// DefaultImportLine imports the generated localization class.
const DefaultImportLine = "import 'package:app/generated/l10n.dart';"

var importRe = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)

// ImportIndex returns the index of the line that imports the same library as
// importLine, or -1.
func ImportIndex(lines []string, importLine string) int {
	want := strings.TrimSpace(importLine)

	uri := ""
	if m := importRe.FindStringSubmatch(want); m != nil {
		uri = m[1]
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == want {
			return i
		}

		if m := importRe.FindStringSubmatch(line); m != nil && uri != "" && m[1] == uri {
			return i
		}
	}

	return -1
}

// LastImport returns the index of the last import directive, or -1.
func LastImport(lines []string) int {
	last := -1

	for i, line := range lines {
		if importRe.MatchString(line) {
			last = i
		}
	}

	return last
}
