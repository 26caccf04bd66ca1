package cryptofolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// this file contains functions to handle the import/export format.
// It should remain human readable, single file and easy to merge into another database.

// EncodeEntries writes entries to 'w' in the import/export format.
//
// The format is a JSONL file, where each line is a JSON object representing an entry:
//
//	{"id":1,"kind":"buy","coin":"bitcoin","symbol":"BTC","amount":"0.5","price":"50000","currency":"CAD","feeBuy":0.1,"type":"classic","wallet":"kraken"}
//
// Amounts and prices are decimal strings so that no precision is lost.
func EncodeEntries(w io.Writer, entries Entries) error {
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("cannot encode entry %d: %w", e.ID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEntries reads entries from 'r' in the import/export format.
// Blank lines are ignored, every entry is validated.
func DecodeEntries(r io.Reader) (Entries, error) {
	var entries Entries
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("line %d: cannot parse entry %q: %w", lineNum, string(line), err)
		}
		e.Normalize()
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
