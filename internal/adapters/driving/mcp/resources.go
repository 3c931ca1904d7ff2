package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
)

const (
	// uriScheme is the custom URI scheme for trial resources.
	uriScheme = "trials://"
)

// registerResources registers the resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the published tools.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tools",
		Name:        "tools",
		Description: "Published tools with their argument schemas",
		MIMEType:    "application/json",
	}, s.handleToolsResource)

	if _, ok := s.descriptor(services.ToolGetTrialDetails); !ok {
		return
	}

	// Template for a single study record.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "trials/{nctId}",
		Name:        "trial",
		Description: "A ClinicalTrials.gov study record by NCT identifier",
		MIMEType:    "application/json",
	}, s.handleTrialResource)
}

func (s *Server) descriptor(name string) (domain.ToolDescriptor, bool) {
	for _, t := range s.tools {
		if t.Name == name {
			return t, true
		}
	}
	return domain.ToolDescriptor{}, false
}

// handleToolsResource lists the published tools.
func (s *Server) handleToolsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type toolInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		InputSchema any    `json:"input_schema"`
	}

	infos := make([]toolInfo, len(s.tools))
	for i, t := range s.tools {
		infos[i] = toolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: services.JSONSchema(t.Schema),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling tools: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleTrialResource returns one study record through get_trial_details.
func (s *Server) handleTrialResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	nctID := extractNCTID(req.Params.URI)
	if nctID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result := s.ports.Tools.Invoke(ctx, domain.ToolCall{
		ID:        uuid.NewString(),
		Name:      services.ToolGetTrialDetails,
		Arguments: map[string]any{"nct_id": nctID},
	})
	if result.Failed() {
		if result.Error.Kind == domain.KindValidation || isNotFound(result.Error) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting trial %s: %s", nctID, result.Error.Message)
	}
	if result.Trial == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(result.Trial, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling trial: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func isNotFound(e *domain.ToolError) bool {
	return e.Kind == domain.KindFetch && e.Status == http.StatusNotFound
}

// extractNCTID extracts the study ID from a URI like trials://trials/{nctId}.
func extractNCTID(uri string) string {
	const prefix = uriScheme + "trials/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
