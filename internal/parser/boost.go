package parser

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctp/internal/domain"
)

type boostEntry struct {
	File string `xml:"file,attr"`
	Line string `xml:"line,attr"`
	Text string `xml:",chardata"`
}

// BoostParser parses the XML log written by --log_sink with
// --output_format=xml.
type BoostParser struct{}

// NewBoostParser creates a new BoostParser
func NewBoostParser() *BoostParser {
	return &BoostParser{}
}

// ParseLog returns one failure per Exception element followed by one per
// Error element. Elements nested inside TestSuite/TestCase wrappers are
// included. An empty log has no failures.
func (p *BoostParser) ParseLog(r io.Reader) (domain.Failures, error) {
	br := bufio.NewReader(r)
	if empty, err := isBlank(br); err != nil {
		return nil, fmt.Errorf("read boost log: %w", err)
	} else if empty {
		return nil, nil
	}

	var exceptions, errs domain.Failures
	dec := xml.NewDecoder(br)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse boost log: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || (start.Name.Local != "Exception" && start.Name.Local != "Error") {
			continue
		}

		var entry boostEntry
		if err := dec.DecodeElement(&entry, &start); err != nil {
			return nil, fmt.Errorf("parse boost log: %w", err)
		}
		failure, err := entry.failure()
		if err != nil {
			return nil, err
		}
		if start.Name.Local == "Exception" {
			exceptions = append(exceptions, failure)
		} else {
			errs = append(errs, failure)
		}
	}

	if len(exceptions)+len(errs) == 0 {
		return nil, nil
	}
	return append(exceptions, errs...), nil
}

func (e boostEntry) failure() (domain.Failure, error) {
	file := e.File
	if file == "" {
		file = domain.UnknownLocation
	}
	line := 0
	if e.Line != "" {
		n, err := strconv.Atoi(strings.TrimSpace(e.Line))
		if err != nil {
			return domain.Failure{}, fmt.Errorf("parse boost log: invalid line %q for %s", e.Line, file)
		}
		line = n
	}
	return domain.NewFailure(file, line, e.Text), nil
}

func isBlank(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.Peek(1)
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return false, err
			}
		default:
			return false, nil
		}
	}
}
