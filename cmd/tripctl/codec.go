package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"

	"github.com/NomadCrew/nomad-crew-planner/types"
)

type format string

const (
	formatJSON format = "json"
	formatYAML format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch s {
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// encodeTrips writes trips using their JSON field names in either format.
func encodeTrips(trips []*types.Trip, f format) ([]byte, error) {
	raw, err := json.MarshalIndent(trips, "", "  ")
	if err != nil {
		return nil, err
	}
	if f == formatJSON {
		return append(raw, '\n'), nil
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeTrips reads an export. JSON is recognised by content; anything
// else is read as YAML.
func decodeTrips(data []byte) ([]*types.Trip, format, error) {
	f := formatYAML
	if mimetype.Detect(data).Is("application/json") {
		f = formatJSON
	}

	raw := data
	if f == formatYAML {
		var generic interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, f, fmt.Errorf("parse yaml: %w", err)
		}
		var err error
		raw, err = json.Marshal(generic)
		if err != nil {
			return nil, f, fmt.Errorf("convert yaml: %w", err)
		}
	}

	var trips []*types.Trip
	if err := json.Unmarshal(raw, &trips); err != nil {
		return nil, f, fmt.Errorf("parse trips: %w", err)
	}
	return trips, f, nil
}
