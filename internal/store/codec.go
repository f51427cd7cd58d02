package store

import (
	"encoding/json"
	"fmt"

	"github.com/NomadCrew/nomad-crew-planner/types"
)

// Encode serializes a trip into its stored document form.
func Encode(trip *types.Trip) ([]byte, error) {
	if trip == nil {
		return nil, fmt.Errorf("encode trip: nil trip")
	}
	data, err := json.Marshal(trip)
	if err != nil {
		return nil, fmt.Errorf("encode trip %s: %w", trip.ID, err)
	}
	return data, nil
}

// Decode parses a stored document.
func Decode(data []byte) (*types.Trip, error) {
	var trip types.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}
	return &trip, nil
}
