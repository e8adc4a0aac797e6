package ctc_test

import (
	"testing"

	"github.com/cubicletools/ctc"
)

func BenchmarkExpandFixtures(b *testing.B) {
	suite, err := ctc.GetTests()
	if err != nil {
		b.Fatalf("Failed to load tests.toml: %v", err)
	}

	for testName, testCase := range suite {
		if !testCase.Benchmark {
			continue
		}

		b.Run(testName, func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				output, err := runTestCase(testCase)
				if err != nil && testCase.Error == "" {
					b.Fatalf("Unexpected error: %v", err)
				}

				_ = output
			}
		})
	}
}
