package parser

import "strings"

// ParseGoogleTestList parses the output of --gtest_list_tests.
//
// Unindented lines ending in "." open a suite; indented lines are cases of
// the latest suite. Anything after '#' is a comment GoogleTest prints for
// parameterized and typed tests.
func ParseGoogleTestList(output string) []string {
	var (
		suite string
		ids   []string
	)
	for _, line := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "  ") {
			if suite == "" {
				continue
			}
			ids = append(ids, suite+strings.TrimSpace(line))
			continue
		}

		if strings.HasSuffix(line, ".") {
			suite = line
		}
	}
	return ids
}
