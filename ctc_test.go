package ctc_test

import (
	"bytes"
	"flag"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cubicletools/ctc"
)

var (
	testFilter  = flag.String("test.filter", "", "Run only specified tests from tests.toml (comma-separated list)")
	testExclude = flag.String("test.exclude", "", "Exclude specified tests from tests.toml (comma-separated list)")
)

// runTestCase executes a single fixture case and returns the output and error.
func runTestCase(testCase *ctc.TestCase) ([]byte, error) {
	fsys := fstest.MapFS{}

	for filename, content := range testCase.Files {
		fsys[filename] = &fstest.MapFile{
			Data: []byte(content),
		}
	}

	if testCase.Diff != "" {
		result, err := ctc.Compare(fsys, testCase.Template, testCase.Diff, testCase.DataFiles, testCase.Set)
		if err != nil {
			return nil, err
		}

		return []byte(result.Diff), nil
	}

	return ctc.Expand(fsys, testCase.Template, testCase.DataFiles, testCase.Set)
}

func parseNameList(t *testing.T, suite map[string]*ctc.TestCase, spec string) map[string]bool {
	t.Helper()

	names := map[string]bool{}

	if spec == "" {
		return names
	}

	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		if _, ok := suite[name]; !ok {
			t.Fatalf("Test %q not found in tests.toml", name)
		}

		names[name] = true
	}

	return names
}

func TestExpandFixtures(t *testing.T) {
	suite, err := ctc.GetTests()
	if err != nil {
		t.Fatalf("Failed to load tests.toml: %v", err)
	}

	filterTests := parseNameList(t, suite, *testFilter)
	excludeTests := parseNameList(t, suite, *testExclude)

	for testName, testCase := range suite {
		if len(filterTests) > 0 && !filterTests[testName] {
			continue
		}

		if excludeTests[testName] {
			continue
		}

		if testCase.Benchmark {
			continue
		}

		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			output, err := runTestCase(testCase)

			if testCase.Error != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, but got no error", testCase.Error)
				}

				if !strings.Contains(err.Error(), testCase.Error) {
					t.Fatalf("Expected error containing %q, but got: %v", testCase.Error, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if !bytes.Equal(bytes.TrimSpace(output), bytes.TrimSpace([]byte(testCase.Expected))) {
				t.Errorf("Output mismatch\nExpected:\n%s\nGot:\n%s", testCase.Expected, output)
			}
		})
	}
}
