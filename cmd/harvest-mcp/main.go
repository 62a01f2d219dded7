package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("HARVEST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	client := newAPIClient(apiURL, os.Getenv("HARVEST_API_KEY"))

	s := server.NewMCPServer(
		"harvest",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	harvestTool := mcp.NewTool("harvest_companies",
		mcp.WithDescription("Collect companies from the startup directory listing, enrich each with its website and founders, and return the result as a table. Large limits can take several minutes."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of companies to collect. Omit to collect every company matching the filters."),
		),
		mcp.WithString("filters",
			mcp.Description(`JSON object of listing filters, e.g. {"batch": "Winter 2024", "industry": ["B2B", "Fintech"]}. Allowed keys: regions, batch, industry, team_size, isHiring, nonprofit, top_company.`),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'csv' (default), 'json', or 'markdown'"),
			mcp.Enum("csv", "json", "markdown"),
		),
	)
	s.AddTool(harvestTool, handleHarvest(client))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleHarvest(client *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, format, err := buildRequest(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		id, err := client.start(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("harvest request failed: %v", err)), nil
		}
		st, err := client.wait(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling harvest job failed: %v", err)), nil
		}
		if st.Status != "completed" {
			msg := "harvest failed"
			if st.Error != nil {
				msg = st.Error.Error()
			}
			return mcp.NewToolResultError(msg), nil
		}

		artifact, err := client.export(ctx, id, format)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}

		header := fmt.Sprintf("Source: %s\nCompanies: %d (detail pages failed: %d)\n\n", st.URL, st.Total, st.Failed)
		return mcp.NewToolResultText(header + artifact), nil
	}
}

// buildRequest validates tool arguments.
func buildRequest(request mcp.CallToolRequest) (harvestRequest, string, error) {
	var req harvestRequest

	args := request.GetArguments()
	if v, ok := args["limit"]; ok && v != nil {
		f, ok := v.(float64)
		if !ok || f < 0 || f != float64(int(f)) {
			return req, "", fmt.Errorf("limit must be a non-negative integer")
		}
		n := int(f)
		req.Limit = &n
	}

	if raw := request.GetString("filters", ""); raw != "" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return req, "", fmt.Errorf("filters must be a JSON object: %v", err)
		}
		req.Filters = json.RawMessage(raw)
	}

	format := request.GetString("format", "csv")
	req.Format = format
	return req, format, nil
}
