package ctc

import (
	_ "embed"

	"github.com/pelletier/go-toml/v2"
)

//go:embed tests.toml
var testsData []byte

// TestCase is one entry in the embedded fixture suite. Each case expands
// Template against DataFiles and Set overrides, then checks the output
// against Expected (or the error against Error). A non-empty Diff names a
// second template and switches the case to comparing the two expansions.
type TestCase struct {
	Description string            `toml:"description"`
	Template    string            `toml:"template"`
	DataFiles   []string          `toml:"dataFiles,omitempty"`
	Set         []string          `toml:"set,omitempty"`
	Files       map[string]string `toml:"files"`
	Expected    string            `toml:"expected,omitempty"`
	Error       string            `toml:"error,omitempty"`
	Diff        string            `toml:"diff,omitempty"`
	Benchmark   bool              `toml:"benchmark,omitempty"`
}

// GetTests returns the embedded fixture suite, keyed by test name.
func GetTests() (map[string]*TestCase, error) {
	var tests map[string]*TestCase
	if err := toml.Unmarshal(testsData, &tests); err != nil {
		return nil, err
	}

	return tests, nil
}
