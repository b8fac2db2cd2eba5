// Package testdata holds recorded hand landmark fixtures for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ayusman/handquiz/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// ExpectedCounts maps each fixture to the finger count it should produce.
var ExpectedCounts = map[string]int{
	"fist":          0,
	"one":           1,
	"two":           2,
	"three":         3,
	"four":          4,
	"open_palm":     4,
	"pointing_down": 0,
}

// hand is the on-disk fixture format; it matches the hands sent by clients.
type hand struct {
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
	Points     []detector.Point3D `json:"points"`
}

// RawHand returns the JSON of a fixture, ready to embed in a frame request.
func RawHand(name string) ([]byte, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load hand %s: %w", name, err)
	}
	return data, nil
}

// LoadHand loads a fixture by name.
func LoadHand(name string) (detector.HandLandmarks, error) {
	data, err := RawHand(name)
	if err != nil {
		return detector.HandLandmarks{}, err
	}

	var h hand
	if err := json.Unmarshal(data, &h); err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("decode hand %s: %w", name, err)
	}

	return detector.NewHandLandmarks(h.Points, h.Handedness, h.Score)
}

// HandNames lists every fixture, sorted.
func HandNames() ([]string, error) {
	entries, err := handsFS.ReadDir("hands")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
