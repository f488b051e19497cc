package exclusion

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads an exclusion list from the experimenter-maintained
// invalid-trials file.
//
// The file starts with a free-form comment block (lines beginning with
// '#') describing the exclusion conventions, followed by a header line
// and one entry per row:
//
//	participant_id,trial_number,reason
//	7,3,electrode detached
//	12,0,withdrew consent
//
// trial_number 0 means all trials of the participant.
func LoadCSV(path string) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclusion list: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV parses the invalid-trials format from a reader.
func ParseCSV(r io.Reader) (List, error) {
	br := bufio.NewReader(r)

	// Skip the leading comment block.
	var body strings.Builder
	for {
		line, err := br.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			body.WriteString(line)
			if err == nil {
				rest, rerr := io.ReadAll(br)
				if rerr != nil {
					return nil, fmt.Errorf("read exclusion list: %w", rerr)
				}
				body.Write(rest)
			}
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read exclusion list: %w", err)
		}
	}

	cr := csv.NewReader(strings.NewReader(body.String()))
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse exclusion list: %w", err)
	}
	if len(records) == 0 {
		return List{}, nil
	}

	// First non-comment line is the header.
	var list List
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("exclusion list row %d: want at least participant and trial, got %d fields", i+1, len(rec))
		}
		participant, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("exclusion list row %d: participant: %w", i+1, err)
		}
		trial, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("exclusion list row %d: trial: %w", i+1, err)
		}
		e := Entry{Participant: participant, Trial: trial}
		if len(rec) > 2 {
			e.Reason = rec[2]
		}
		list = append(list, e)
	}
	return list, nil
}
