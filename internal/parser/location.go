package parser

import (
	"strconv"
	"strings"

	"ctp/internal/domain"
)

// ParseFailureText builds a failure from GoogleTest failure text. When the
// first line looks like "<path>:<line>" it becomes the file reference and is
// removed from the rendered lines; otherwise the failure has no attribution.
func ParseFailureText(contents string) domain.Failure {
	lines := domain.SplitLines(contents)
	file, num := domain.UnknownFile, 0

	if len(lines) > 0 {
		if i := strings.LastIndex(lines[0], ":"); i >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(lines[0][i+1:])); err == nil {
				file, num = lines[0][:i], n
				lines = lines[1:]
			}
		}
	}

	return domain.Failure{
		Lines: domain.MarkLines(lines),
		File:  file,
		Line:  num,
	}
}
