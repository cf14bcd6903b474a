// Command validate classifies a JSON fixture of raw city-pollution records
// and reports, per record, whether it would be accepted and which rule
// rejected it otherwise.
//
// Usage:
//
//	go run ./cmd/validate -input records.json
//
// The input file holds either a bare JSON array of records or the upstream
// envelope {"results": [...]}.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/city-air-service/internal/domain"
)

func main() {
	input := flag.String("input", "", "path to JSON file of raw records")
	quiet := flag.Bool("quiet", false, "only print the summary line")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *quiet); code != 0 {
		os.Exit(code)
	}
}

func run(path string, quiet bool) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return 1
	}

	records, err := decodeRecords(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode input: %v\n", err)
		return 1
	}

	accepted := 0
	for i, raw := range records {
		city, err := domain.Classify(raw)
		if err != nil {
			if !quiet {
				fmt.Printf("%4d REJECT %-30v %v\n", i, raw.Name, err)
			}
			continue
		}
		accepted++
		if !quiet {
			note := ""
			if city.Country != "" && !domain.CountryValid(city.Country) {
				note = " (implausible country)"
			}
			fmt.Printf("%4d ACCEPT %-30s country=%q pollution=%g%s\n", i, city.Name, city.Country, city.Pollution, note)
		}
	}

	fmt.Printf("total=%d accepted=%d rejected=%d\n", len(records), accepted, len(records)-accepted)
	return 0
}

func decodeRecords(data []byte) ([]domain.RawRecord, error) {
	var envelope struct {
		Results []domain.RawRecord `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
