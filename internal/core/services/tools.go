package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

// Built-in tool names.
const (
	ToolSearchTrials    = "search_trials"
	ToolGetTrialDetails = "get_trial_details"
	ToolCountTrials     = "count_trials"
)

// TrialTools declares the registry tools backed by api.
func TrialTools(api driven.TrialsAPI) []Tool {
	t := &trialTools{api: api}
	return []Tool{
		{
			ToolDescriptor: domain.ToolDescriptor{
				Name: ToolSearchTrials,
				Description: "Search ClinicalTrials.gov for studies of a condition, optionally " +
					"filtered by location, recruitment status and phase. Returns one page of " +
					"trials and a token for the next page.",
				Schema: domain.Schema{Fields: append(filterFields(),
					domain.FieldSpec{
						Name:        "page_size",
						Type:        domain.TypeInteger,
						Description: "Maximum number of trials to return (1-100)",
						Minimum:     domain.Bound(1),
						Maximum:     domain.Bound(domain.MaxPageSize),
						Default:     domain.DefaultPageSize,
					},
					domain.FieldSpec{
						Name:        "page_token",
						Type:        domain.TypeString,
						Description: "Token from a previous search to fetch the next page",
					},
				)},
			},
			Handler: t.search,
		},
		{
			ToolDescriptor: domain.ToolDescriptor{
				Name:        ToolGetTrialDetails,
				Description: "Get the details of a single study by its NCT identifier (e.g. NCT01234567).",
				Schema: domain.Schema{Fields: []domain.FieldSpec{{
					Name:        "nct_id",
					Type:        domain.TypeString,
					Required:    true,
					Description: "ClinicalTrials.gov registry number, NCT followed by 8 digits",
				}}},
			},
			Handler: t.get,
		},
		{
			ToolDescriptor: domain.ToolDescriptor{
				Name:        ToolCountTrials,
				Description: "Count the studies registered for a condition, with the same filters as search_trials.",
				Schema:      domain.Schema{Fields: filterFields()},
			},
			Handler: t.count,
		},
	}
}

func filterFields() []domain.FieldSpec {
	return []domain.FieldSpec{
		{
			Name:        "condition",
			Type:        domain.TypeString,
			Required:    true,
			Description: "Disease or condition, e.g. 'type 2 diabetes' or 'breast cancer'",
		},
		{
			Name:        "location",
			Type:        domain.TypeString,
			Description: "City, state or country where the trial runs",
		},
		{
			Name:        "status",
			Type:        domain.TypeString,
			Description: "Recruitment status: " + joinStatuses(),
		},
		{
			Name:        "phase",
			Type:        domain.TypeString,
			Description: "Study phase: " + joinPhases(),
		},
	}
}

func joinStatuses() string {
	parts := make([]string, 0, len(domain.TrialStatuses()))
	for _, s := range domain.TrialStatuses() {
		parts = append(parts, strings.ToLower(string(s)))
	}
	return strings.Join(parts, ", ")
}

func joinPhases() string {
	parts := make([]string, 0, len(domain.Phases()))
	for _, p := range domain.Phases() {
		parts = append(parts, strings.ToLower(string(p)))
	}
	return strings.Join(parts, ", ")
}

type trialTools struct {
	api driven.TrialsAPI
}

func (t *trialTools) search(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
	q, err := queryFromArgs(args)
	if err != nil {
		return domain.ToolResult{}, err
	}
	page, err := t.api.Search(ctx, q)
	if err != nil {
		return domain.ToolResult{}, fmt.Errorf("search trials: %w", err)
	}
	return domain.ToolResult{Page: &page}, nil
}

func (t *trialTools) get(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
	rec, err := t.api.Get(ctx, domain.StringArg(args, "nct_id"))
	if err != nil {
		return domain.ToolResult{}, fmt.Errorf("get trial: %w", err)
	}
	return domain.ToolResult{Trial: &rec}, nil
}

func (t *trialTools) count(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
	q, err := queryFromArgs(args)
	if err != nil {
		return domain.ToolResult{}, err
	}
	n, err := t.api.Count(ctx, q)
	if err != nil {
		return domain.ToolResult{}, fmt.Errorf("count trials: %w", err)
	}
	return domain.ToolResult{Count: &n}, nil
}

func queryFromArgs(args map[string]any) (domain.TrialQuery, error) {
	status, err := domain.ParseTrialStatus(domain.StringArg(args, "status"))
	if err != nil {
		return domain.TrialQuery{}, err
	}
	phase, err := domain.ParsePhase(domain.StringArg(args, "phase"))
	if err != nil {
		return domain.TrialQuery{}, err
	}
	return domain.NewTrialQuery(
		domain.StringArg(args, "condition"),
		domain.StringArg(args, "location"),
		status,
		phase,
		domain.IntArg(args, "page_size"),
		domain.StringArg(args, "page_token"),
	)
}
