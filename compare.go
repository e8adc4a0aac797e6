package ctc

import (
	"fmt"
	"io/fs"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// CompareResult holds the unified diff between two expanded templates.
type CompareResult struct {
	File1 string
	File2 string
	Diff  string
}

// Compare expands both templates against the same layered data and returns
// their unified diff. An empty Diff means the expanded models are identical.
func Compare(fx fs.FS, path1, path2 string, dataPaths []string, overrides []string) (*CompareResult, error) {
	output1, err := Expand(fx, path1, dataPaths, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path1, err)
	}

	output2, err := Expand(fx, path2, dataPaths, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path2, err)
	}

	edits := myers.ComputeEdits(span.URIFromPath(path1), string(output1), string(output2))
	unified := fmt.Sprint(gotextdiff.ToUnified(path1, path2, string(output1), edits))

	return &CompareResult{
		File1: path1,
		File2: path2,
		Diff:  unified,
	}, nil
}
