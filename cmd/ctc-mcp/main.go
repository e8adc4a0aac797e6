package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"testing/fstest"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cubicletools/ctc"
	"github.com/cubicletools/ctc/internal/highlight"
	"github.com/cubicletools/ctc/internal/utils"
	"github.com/cubicletools/ctc/pkg/version"
)

var tests map[string]*ctc.TestCase

func loadData() error {
	var err error

	tests, err = ctc.GetTests()
	if err != nil {
		return fmt.Errorf("failed to load tests: %v", err)
	}

	return nil
}

func main() {
	if err := loadData(); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	mcpServer := server.NewMCPServer(
		"ctc-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	fileSystemParam := mcp.WithObject("fileSystem",
		mcp.Required(),
		mcp.Description("Map of filename to file content for the operation"),
	)
	dataFilesParam := mcp.WithString("dataFiles",
		mcp.Description("Comma-separated list of data files to merge, in order (relative paths)"),
	)
	setParam := mcp.WithArray("set",
		mcp.Description("path=value overrides applied after the data files merge"),
	)

	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Query ctc template examples by keywords"),
		mcp.WithString("keywords",
			mcp.Required(),
			mcp.Description("Keywords to search for (comma-separated) in example names, descriptions and file contents"),
		),
	)
	mcpServer.AddTool(queryTool, queryHandler)

	getTool := mcp.NewTool("get",
		mcp.WithDescription("Get the full content of a template example"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the example"),
		),
	)
	mcpServer.AddTool(getTool, getHandler)

	expandTool := mcp.NewTool("expand",
		mcp.WithDescription("Expand a cubicle template against data files and return the generated model"),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template file path"),
		),
		dataFilesParam,
		setParam,
		fileSystemParam,
	)
	mcpServer.AddTool(expandTool, expandHandler)

	diffTool := mcp.NewTool("diff",
		mcp.WithDescription("Expand two templates against the same data and return a unified diff of the generated models"),
		mcp.WithString("baseFile",
			mcp.Required(),
			mcp.Description("Base template path"),
		),
		mcp.WithString("targetFile",
			mcp.Required(),
			mcp.Description("Target template path"),
		),
		dataFilesParam,
		setParam,
		fileSystemParam,
	)
	mcpServer.AddTool(diffTool, diffHandler)

	tokensTool := mcp.NewTool("tokens",
		mcp.WithDescription("Classify cubicle source and return its lexical spans or span counts"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Cubicle source text to classify"),
		),
		mcp.WithString("mode",
			mcp.Description("Output mode: 'spans' (default), 'counts' or 'groups'"),
		),
		mcp.WithString("format",
			mcp.Description("Output format (json, json-pretty, toml, yaml, properties) - defaults to json-pretty"),
		),
	)
	mcpServer.AddTool(tokensTool, tokensHandler)

	highlightTool := mcp.NewTool("highlight",
		mcp.WithDescription("Render cubicle source through a chroma style and formatter"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Cubicle source text to highlight"),
		),
		mcp.WithString("style",
			mcp.Description("Chroma style name (for example monokai, github) - defaults to the fallback style"),
		),
		mcp.WithString("formatter",
			mcp.Description("Chroma formatter name (for example html, terminal256, noop) - defaults to html"),
		),
	)
	mcpServer.AddTool(highlightTool, highlightHandler)

	versionTool := mcp.NewTool("version",
		mcp.WithDescription("Get version and build information for ctc"),
	)
	mcpServer.AddTool(versionTool, versionHandler)

	templateGuideTool := mcp.NewTool("template_guide",
		mcp.WithDescription("Get guidance for writing cubicle templates"),
	)
	mcpServer.AddTool(templateGuideTool, templateGuideHandler)

	issuePromptTool := mcp.NewTool("issue_prompt",
		mcp.WithDescription("Get guidance for filing an issue with a minimal reproduction case"),
	)
	mcpServer.AddTool(issuePromptTool, issuePromptHandler)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func queryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keywordsStr, err := request.RequireString("keywords")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	keywords := splitCommaList(keywordsStr)
	if len(keywords) == 0 {
		return mcp.NewToolResultError("No keywords provided"), nil
	}

	normalizedKeywords := make([]string, len(keywords))
	for i, keyword := range keywords {
		normalizedKeywords[i] = strings.ToLower(keyword)
	}

	var allResults []map[string]any

	for name, test := range tests {
		score := 0
		details := map[string]any{}

		nameMatches := countKeywordMatches(strings.ToLower(name), normalizedKeywords)
		descMatches := countKeywordMatches(strings.ToLower(test.Description), normalizedKeywords)

		var matchingFileContent string
		var bestFileMatches int
		for filename, content := range test.Files {
			contentLower := strings.ToLower(content)
			fileMatches := countKeywordMatches(contentLower, normalizedKeywords)
			if fileMatches > bestFileMatches {
				bestFileMatches = fileMatches
				details["matching_file"] = filename
				// Extract snippet around first matching keyword
				if len(content) > 150 {
					firstKeyword := findFirstKeyword(contentLower, normalizedKeywords)
					if firstKeyword != "" {
						idx := strings.Index(contentLower, firstKeyword)
						if idx >= 0 {
							start := max(0, idx-30)
							end := min(len(content), idx+120)
							matchingFileContent = "..." + content[start:end] + "..."
						}
					}
				} else {
					matchingFileContent = content
				}
			}
		}

		score += nameMatches * 25
		score += descMatches * 15
		score += bestFileMatches * 10

		if score > 0 {
			result := map[string]any{
				"name":        name,
				"description": test.Description,
				"score":       score,
				"features":    testFeatures(test),
			}
			if matchingFileContent != "" {
				result["content_preview"] = matchingFileContent
			}
			for k, v := range details {
				result[k] = v
			}
			allResults = append(allResults, result)
		}
	}

	sort.Slice(allResults, func(i, j int) bool {
		scoreI := allResults[i]["score"].(int)
		scoreJ := allResults[j]["score"].(int)
		if scoreI == scoreJ {
			return allResults[i]["name"].(string) < allResults[j]["name"].(string)
		}
		return scoreI > scoreJ
	})

	if len(allResults) > 15 {
		allResults = allResults[:15]
	}

	response := map[string]any{
		"keywords": keywords,
		"results":  allResults,
		"count":    len(allResults),
	}

	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(resultJSON)), nil
}

func getHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	test, exists := tests[name]
	if !exists {
		return mcp.NewToolResultText(fmt.Sprintf("Example '%s' not found", name)), nil
	}

	testJSON, err := json.MarshalIndent(test, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(testJSON)), nil
}

func expandHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	template, err := request.RequireString("template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	fileSystem, err := parseFileSystem(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dataFiles := splitCommaList(parseOptionalString(args, "dataFiles", ""))

	overrides, err := parseOverrides(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	testFS := createTestFS(fileSystem)

	output, err := ctc.Expand(testFS, template, dataFiles, overrides)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Expansion failed: %v", err)), nil
	}

	response := map[string]any{
		"template":  template,
		"output":    string(output),
		"operation": "expand",
	}

	if len(dataFiles) > 0 {
		response["dataFiles"] = dataFiles
	}
	if len(overrides) > 0 {
		response["set"] = overrides
	}

	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func diffHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseFile, err := request.RequireString("baseFile")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	targetFile, err := request.RequireString("targetFile")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	fileSystem, err := parseFileSystem(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dataFiles := splitCommaList(parseOptionalString(args, "dataFiles", ""))

	overrides, err := parseOverrides(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	testFS := createTestFS(fileSystem)

	result, err := ctc.Compare(testFS, baseFile, targetFile, dataFiles, overrides)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Diff operation failed: %v", err)), nil
	}

	response := map[string]any{
		"baseFile":   baseFile,
		"targetFile": targetFile,
		"diff":       result.Diff,
		"operation":  "diff",
	}

	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func tokensHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	mode := parseOptionalString(args, "mode", "spans")
	format := parseOptionalString(args, "format", "json-pretty")

	var output []byte

	switch mode {
	case "spans":
		output, err = ctc.TokensOutput([]byte(source), format)
	case "counts":
		output, err = ctc.CountsOutput([]byte(source), format)
	case "groups":
		output, err = ctc.GroupCountsOutput([]byte(source), format)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid mode '%s'. Must be 'spans', 'counts' or 'groups'", mode)), nil
	}

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Token dump failed: %v", err)), nil
	}

	response := map[string]any{
		"mode":      mode,
		"format":    format,
		"output":    string(output),
		"operation": "tokens",
	}

	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func highlightHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	style := parseOptionalString(args, "style", "")
	formatter := parseOptionalString(args, "formatter", "html")

	buf := bytes.Buffer{}

	err = highlight.Render(&buf, []byte(source), style, formatter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Highlight failed: %v", err)), nil
	}

	response := map[string]any{
		"style":     style,
		"formatter": formatter,
		"output":    buf.String(),
		"operation": "highlight",
	}

	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func versionHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bi := version.GetVersion()
	if bi == nil {
		return mcp.NewToolResultError("Failed to get build information"), nil
	}

	resultJSON, err := json.MarshalIndent(bi, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func templateGuideHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := `# Writing Cubicle Templates

A cubicle template is ordinary cubicle source plus @...@ references that
the compiler resolves against structured data (YAML, JSON, TOML or Java
properties files).

## Declaration iterators

Prefix a declaration with an iterator to replicate it per instance:

` + "```" + `
@ch@ var pending_@0@ : bool
` + "```" + `

With data ` + "`ch: {a: {}, b: {}}`" + ` this expands to two variable
declarations, one for pending_a and one for pending_b. Inside the
declaration, @0@ names the current instance key.

- ` + "`@name, 0.field@`" + ` chains a second iterator over a field of the
  first instance; @1@ then names the inner instance.
- ` + "`@name | cond@`" + ` keeps only instances where cond holds, for
  example ` + "`@grp | @0.mode@ = rw@`" + `.
- ` + "`@name.field@`" + ` inside any line looks a field up directly.

## Expression iterators

Inside init, invariant, unsafe and requires expressions, a parenthesized
group replicates per instance and joins with the leading operator:

` + "```" + `
init (i) { ctl = Idle && @ch@ (&& pending_@0@ = False) }
` + "```" + `

Use (|| ...) for disjunctions. Case arms take the same iterator form.

## Instances

Map keys become instances, sorted with numeric keys first. A scalar map
value v is wrapped as {value: v, _key: key}; list elements and empty
values get just {_key: ...}. Iterators with no instances drop their
group, and declarations left with nothing (an init with no expression, a
transition with no updates) drop entirely.

## Data handling

Data files merge left to right: maps merge recursively, everything else
replaces. path=value overrides (the set parameter) apply last, with the
value parsed as YAML, so ` + "`env.prod={}`" + ` adds an empty map entry.

## Workflow

1. Start from the expanded model you want and introduce one iterator at
   a time.
2. Use the expand tool after each step to check the output.
3. Use the diff tool to compare two template variants against the same
   data.
4. Use the tokens tool when the expansion fails with a parse error to
   see how the source lexes.`

	return mcp.NewToolResultText(prompt), nil
}

func issuePromptHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := `# Filing a ctc Issue - Steps

1. **Create a minimal reproduction case**:
   - Use the expand/diff/tokens tools to isolate the problem
   - Start with the full template and data that show the issue
   - Progressively simplify while ensuring the issue still occurs

2. **Sanitize the input**:
   - Replace business identifiers with generic ones (e.g., "payments-primary" -> "a")
   - Keep the structure and issue intact while removing business context

3. **Get version information**:
   - Use the version tool to get build details
   - Include this in your issue report

4. **File the issue using GitHub CLI**:
   - Use ` + "`gh issue create`" + ` in the cubicletools/ctc repository
   - Include:
     - Clear description of expected vs actual behavior
     - Minimal reproduction case (template plus data files)
     - Version information
     - Any error messages

Example workflow:
` + "```" + `bash
# Test your minimal case
mcp call ctc-mcp expand --template "min.cub" --fileSystem '{"min.cub": "your minimal template here"}'

# Get version info
mcp call ctc-mcp version

# File issue
gh issue create --repo cubicletools/ctc --title "Brief description" --body "..."
` + "```" + `

Tips for minimal reproductions:
- For iterator issues, include the data file driving the iterator
- For ordering issues, show the instance keys involved
- For lexer issues, attach the tokens tool output for the failing line
- Keep file contents as small as possible while reproducing the issue`

	return mcp.NewToolResultText(prompt), nil
}

func testFeatures(test *ctc.TestCase) []string {
	var features []string

	if test.Diff != "" {
		features = append(features, "diff")
	}
	if test.Error != "" {
		features = append(features, "error-test")
	}
	if test.Benchmark {
		features = append(features, "benchmark")
	}
	if len(test.DataFiles) > 1 {
		features = append(features, "layered-data")
	}
	if len(test.Set) > 0 {
		features = append(features, "overrides")
	}

	names := make([]string, 0, len(test.Files))
	for name := range test.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	content := strings.Builder{}
	for _, name := range names {
		content.WriteString(test.Files[name])
		content.WriteString("\n")
	}
	all := content.String()

	for _, probe := range []struct {
		marker  string
		feature string
	}{
		{"@", "refs"},
		{"case", "case-arms"},
		{"requires", "requires"},
		{":= ?", "nondet"},
		{"invariant", "invariant"},
		{"unsafe", "unsafe"},
	} {
		if strings.Contains(all, probe.marker) {
			features = append(features, probe.feature)
		}
	}

	seen := map[string]bool{}
	for _, name := range test.DataFiles {
		ext := strings.TrimPrefix(path.Ext(name), ".")
		if ext != "" && !seen[ext] {
			seen[ext] = true
			features = append(features, ext+"-data")
		}
	}

	return features
}

// countKeywordMatches counts how many keywords from the list are found in the text
func countKeywordMatches(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}

// findFirstKeyword returns the first keyword found in the text
func findFirstKeyword(text string, keywords []string) string {
	firstPos := len(text)
	firstKeyword := ""

	for _, keyword := range keywords {
		if pos := strings.Index(text, keyword); pos >= 0 && pos < firstPos {
			firstPos = pos
			firstKeyword = keyword
		}
	}

	return firstKeyword
}

func splitCommaList(s string) []string {
	var items []string
	for _, field := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(field)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func parseFileSystem(args map[string]any) (map[string]string, error) {
	fileSystemRaw := args["fileSystem"]
	if fileSystemRaw == nil {
		return nil, fmt.Errorf("fileSystem parameter is required")
	}

	fileSystemMap, ok := fileSystemRaw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("fileSystem must be an object")
	}

	fileSystem := make(map[string]string)
	for k, v := range fileSystemMap {
		if str, ok := v.(string); ok {
			fileSystem[k] = str
		} else {
			return nil, fmt.Errorf("fileSystem[%s] must be a string, got %T", k, v)
		}
	}

	return fileSystem, nil
}

func parseOverrides(args map[string]any) ([]string, error) {
	raw := args["set"]
	if raw == nil {
		return nil, nil
	}

	overrides, err := utils.ToStringListPermissive(raw)
	if err != nil {
		return nil, fmt.Errorf("set must be an array of path=value strings: %v", err)
	}

	return overrides, nil
}

func parseOptionalString(args map[string]any, key string, defaultValue string) string {
	if val := args[key]; val != nil {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return defaultValue
}

func createTestFS(fileSystem map[string]string) fs.FS {
	fsys := fstest.MapFS{}
	for filename, content := range fileSystem {
		fsys[filename] = &fstest.MapFile{
			Data: []byte(content),
		}
	}

	return fsys
}
