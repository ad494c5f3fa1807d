package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"beacon-dashboard/internal/dashboard"
	"beacon-dashboard/internal/gateway"
	"beacon-dashboard/internal/logging"
	"beacon-dashboard/internal/server"
)

func newSnapshotCmd() *cobra.Command {
	var (
		url           string
		local         bool
		showCompanies bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch once and print the tally",
		Long: "Poll the gateway once (or, with --local, query the board directly through an " +
			"in-process gateway) and print the per-opportunity counts.",
		Example: "  beacon snapshot\n" +
			"  beacon snapshot --local --companies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			var src dashboard.Source
			if local {
				gw, err := server.NewGateway(cfg, nil, nil, nil, logging.Discard())
				if err != nil {
					return err
				}
				src = gatewaySource{gw: gw}
			} else {
				if url == "" {
					url = cfg.GatewayURL()
				}
				src = dashboard.NewGatewayClient(url, 30*time.Second)
			}

			p, err := src.Fetch(ctx)
			if err != nil {
				return err
			}
			printTally(cmd.OutOrStdout(), dashboard.Aggregate(catalog, p.Items), len(p.Items), p, showCompanies)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Gateway URL (default: this config's own /api/survey-data)")
	cmd.Flags().BoolVar(&local, "local", false, "Query the board directly instead of a running server")
	cmd.Flags().BoolVar(&showCompanies, "companies", false, "List consenting companies per opportunity")
	return cmd
}

// gatewaySource adapts an in-process gateway to the dashboard's Source.
type gatewaySource struct {
	gw *gateway.Service
}

func (s gatewaySource) Fetch(ctx context.Context) (dashboard.Payload, error) {
	res := s.gw.SurveyData(ctx)
	switch body := res.Body.(type) {
	case gateway.SurveyData:
		return dashboard.Payload{
			Items:       body.Items,
			Count:       body.Count,
			LastUpdated: body.LastUpdated,
			Cached:      body.Cached,
		}, nil
	case gateway.ErrorBody:
		return dashboard.Payload{}, &dashboard.FetchError{Status: res.Status, Message: body.Error}
	default:
		return dashboard.Payload{}, &dashboard.FetchError{Status: res.Status, Message: http.StatusText(res.Status)}
	}
}

func printTally(w io.Writer, aggs []dashboard.AggregatedCategory, total int, p dashboard.Payload, showCompanies bool) {
	fmt.Fprintf(w, "%d responses (updated %s", total, p.LastUpdated)
	if p.Cached {
		fmt.Fprint(w, ", cached")
	}
	fmt.Fprintln(w, ")")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "OPPORTUNITY\tCOUNT"
	if showCompanies {
		header += "\tCOMPANIES"
	}
	fmt.Fprintln(tw, header)
	for _, a := range aggs {
		line := fmt.Sprintf("%s %s\t%d", a.Flag, a.Label, a.Count)
		if showCompanies {
			line += "\t" + strings.Join(a.Companies, ", ")
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()
}
