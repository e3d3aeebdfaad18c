package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-portal/internal/catalog"
	"github.com/jonathan/career-portal/internal/observability"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
)

var (
	resolveListRoles bool
	resolvePretty    bool
)

var resolveRoleCmd = &cobra.Command{
	Use:   "resolve-role [text]",
	Short: "Resolve free text to a catalog roadmap",
	Long: `Resolve an interest such as "web developer" to a supported role and print
the enriched roadmap as JSON. Unsupported input prints the placeholder payload.

Use --list to print the supported roles instead and --pretty for a boxed
summary instead of JSON.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if resolveListRoles {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runResolveRole,
}

func init() {
	resolveRoleCmd.Flags().BoolVar(&resolveListRoles, "list", false, "List the supported roles")
	resolveRoleCmd.Flags().BoolVar(&resolvePretty, "pretty", false, "Print a human-readable summary instead of JSON")
	rootCmd.AddCommand(resolveRoleCmd)
}

type resolveOutput struct {
	Query   string              `json:"query"`
	Match   catalog.MatchKind   `json:"match"`
	Roadmap types.CareerRoadmap `json:"roadmap"`
}

func runResolveRole(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load role catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	if resolveListRoles {
		if resolvePretty {
			observability.NewPrinter(out).PrintRoles(cat.Roles())
			return nil
		}
		for _, role := range cat.Roles() {
			_, _ = fmt.Fprintln(out, role)
		}
		return nil
	}

	query := strings.Join(args, " ")
	roadmap, match := cat.RoadmapWithMatch(query)
	if resolvePretty {
		observability.NewPrinter(out).PrintRoadmap(query, string(match), &roadmap)
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resolveOutput{Query: query, Match: match, Roadmap: roadmap})
}
