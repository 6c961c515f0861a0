package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"codeintel/internal/engine"
	"codeintel/internal/metrics"
	"codeintel/internal/quality"
	"codeintel/internal/report"
	"codeintel/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing code quality tools over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	// Stdout carries the protocol.
	color.NoColor = true

	e, err := openEngine(true)
	if err != nil {
		return err
	}
	defer e.Close()

	return mcpserver.ServeStdio(newMCPServer(e, rootCmd.Version))
}

func newMCPServer(e *engine.Engine, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("codeintel", version, mcpserver.WithToolCapabilities(false))

	s.AddTool(extractMetricsTool(), makeExtractHandler(e))
	s.AddTool(predictQualityTool(), makePredictHandler(e))
	s.AddTool(compareFilesTool(), makeCompareHandler(e))
	s.AddTool(listHistoryTool(), makeListHistoryHandler(e))
	s.AddTool(findSimilarTool(), makeSimilarHandler(e))
	return s
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

// historyAnnotation marks tools that append to the analysis history.
var historyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(false),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(false),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func extractMetricsTool() mcp.Tool {
	return mcp.NewTool("extract_metrics",
		mcp.WithDescription("Compute the static feature vector of a Python or JavaScript file: line counts, comment ratio, nesting, cyclomatic complexity, identifier quality and more."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the source file"),
		),
	)
}

func predictQualityTool() mcp.Tool {
	return mcp.NewTool("predict_quality",
		mcp.WithDescription("Grade a source file with the clustering model. Returns label, grade, score and suggestions, and records the analysis in history."),
		mcp.WithToolAnnotation(historyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the source file"),
		),
		mcp.WithBoolean("record",
			mcp.Description("Record the analysis in history (default true)"),
		),
	)
}

func compareFilesTool() mcp.Tool {
	return mcp.NewTool("compare_files",
		mcp.WithDescription("Grade two source files and report which one is better, with their key metrics side by side."),
		mcp.WithToolAnnotation(historyAnnotation),
		mcp.WithString("path_a",
			mcp.Required(),
			mcp.Description("Path of the first file"),
		),
		mcp.WithString("path_b",
			mcp.Required(),
			mcp.Description("Path of the second file"),
		),
		mcp.WithBoolean("record",
			mcp.Description("Record both analyses in history (default true)"),
		),
	)
}

func listHistoryTool() mcp.Tool {
	return mcp.NewTool("list_history",
		mcp.WithDescription("List recorded analyses, newest first."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of analyses (default 20, 0 for all)"),
		),
	)
}

func findSimilarTool() mcp.Tool {
	return mcp.NewTool("find_similar",
		mcp.WithDescription("Find recorded analyses whose metrics are closest to those of a file."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the source file"),
		),
		mcp.WithNumber("k",
			mcp.Description("Number of matches (default 5)"),
		),
	)
}

// --- Handler factories ---

func makeExtractHandler(e *engine.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		fv, err := e.Extract(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("## Metrics for `%s`\n\n%s", path, report.FeaturesMarkdown(fv))), nil
	}
}

func makePredictHandler(e *engine.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		a, err := e.Predict(ctx, path, req.GetBool("record", true))
		if err != nil {
			return toolError("prediction failed", err), nil
		}
		return mcp.NewToolResultText(report.AssessmentMarkdown(path, a)), nil
	}
}

func makeCompareHandler(e *engine.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pathA := req.GetString("path_a", "")
		pathB := req.GetString("path_b", "")
		if pathA == "" || pathB == "" {
			return mcp.NewToolResultError("path_a and path_b are required"), nil
		}
		c, err := e.Compare(ctx, pathA, pathB, req.GetBool("record", true))
		if err != nil {
			return toolError("comparison failed", err), nil
		}

		var sb strings.Builder
		sb.WriteString(report.ComparisonMarkdown(pathA, pathB, c.First, c.Second))
		writeSuggestions(&sb, pathA, c.First.Suggestions)
		writeSuggestions(&sb, pathB, c.Second.Suggestions)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeListHistoryHandler(e *engine.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		rows, err := e.History(limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list history failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatHistory(rows)), nil
	}
}

func makeSimilarHandler(e *engine.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		k := req.GetInt("k", 5)
		if k <= 0 {
			k = 5
		}
		matches, err := e.Similar(ctx, path, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("similarity search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatMatches(path, matches)), nil
	}
}

// --- Formatting helpers ---

func toolError(what string, err error) *mcp.CallToolResult {
	if errors.Is(err, quality.ErrNoModel) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: no quality model is configured; use extract_metrics for raw metrics", what))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", what, err))
}

func writeSuggestions(sb *strings.Builder, path string, suggestions []string) {
	fmt.Fprintf(sb, "\n### Suggestions for `%s`\n\n", path)
	for _, s := range suggestions {
		fmt.Fprintf(sb, "- %s\n", s)
	}
}

func formatHistory(rows []store.Analysis) string {
	if len(rows) == 0 {
		return "No analyses recorded yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Analysis history (%d)\n\n", len(rows))
	for _, a := range rows {
		fmt.Fprintf(&sb, "- #%d %s **%s** (%s): %s, grade %s, score %d\n",
			a.ID, a.CreatedAt.UTC().Format("2006-01-02 15:04:05"), a.Path, a.Mode, a.Label, a.Grade, a.Score)
	}
	return sb.String()
}

func formatMatches(path string, matches []store.Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No recorded analyses to compare with %q.", path)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Analyses similar to `%s` (%d)\n\n", path, len(matches))
	for i, m := range matches {
		a := m.Analysis
		fmt.Fprintf(&sb, "%d. **%s** distance %.3f: %s, grade %s, %s lines of code, complexity %s\n",
			i+1, a.Path, m.Distance, a.Label, a.Grade,
			metrics.FormatValue(a.Features.LinesOfCode), metrics.FormatFloat(a.Features.CyclomaticComplexity))
	}
	return sb.String()
}
