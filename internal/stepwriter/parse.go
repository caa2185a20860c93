package stepwriter

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var recordPattern = regexp.MustCompile(`^#(\d+)\s*=\s*([A-Z0-9_]+)\((.*)\);$`)

// ParseData reads the DATA section of a document written by Generate and
// returns its records in file order. It is not a general Part 21 parser:
// every entity must sit on a single line.
func ParseData(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []Record
		inData  bool
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if !inData {
			if line == "DATA;" {
				inData = true
			}
			continue
		}

		if line == "" {
			continue
		}
		if line == "ENDSEC;" {
			return records, nil
		}

		m := recordPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: malformed entity record %q", lineNo, line)
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid entity id: %w", lineNo, err)
		}
		records = append(records, Record{ID: id, Type: m[2], Attributes: m[3]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if !inData {
		return nil, fmt.Errorf("document has no DATA section")
	}
	return nil, fmt.Errorf("DATA section is not terminated by ENDSEC")
}
