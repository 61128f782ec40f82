package main

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/bossy-radar/radar/internal/query"
)

var (
	listPage       int
	listSize       int
	listSort       []string
	listName       string
	listIndustry   []string
	listMarketType []string
	listYears      []int
)

func listParams() query.Params {
	return query.Params{
		Page:       listPage,
		Size:       listSize,
		Sort:       listSort,
		Name:       listName,
		Industry:   listIndustry,
		MarketType: listMarketType,
		Years:      listYears,
	}
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listPage, "page", 1, "page number")
	cmd.Flags().IntVar(&listSize, "size", 20, "page size")
	cmd.Flags().StringSliceVar(&listSort, "sort", nil, "sort keys, prefix with - for descending")
	cmd.Flags().StringVar(&listName, "name", "", "keyword")
	cmd.Flags().StringSliceVar(&listIndustry, "industry", nil, "industry filter")
	cmd.Flags().StringSliceVar(&listMarketType, "market-type", nil, "market type filter")
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, ctx, err := newDataSource(cmd.Context(), cliNotifier(), nil)
		if err != nil {
			return err
		}
		page, err := ds.ListCompanies(ctx, listParams())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), page)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [code]",
	Short: "Show one company profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, ctx, err := newDataSource(cmd.Context(), cliNotifier(), nil)
		if err != nil {
			return err
		}
		profile, err := ds.GetCompanyProfile(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), profile)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "List yearly summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, ctx, err := newDataSource(cmd.Context(), cliNotifier(), nil)
		if err != nil {
			return err
		}
		if len(listYears) == 0 {
			idx, err := ds.GetYearlySummaryIndex(ctx)
			if err != nil {
				return err
			}
			if len(idx.Years) > 0 {
				listYears = []int{slices.Max(idx.Years)}
			}
		}
		page, err := ds.GetYearlySummary(ctx, listParams())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), page)
	},
}

func init() {
	addListFlags(companiesCmd)
	addListFlags(summaryCmd)
	summaryCmd.Flags().IntSliceVar(&listYears, "year", nil, "ROC years (default: latest)")
}
