package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/namma-guide/guide-go/pkg/transport"
)

var routesMode string

var routesCmd = &cobra.Command{
	Use:   "routes <origin> <destination>",
	Short: "Find bus, metro and cab routes between two places",
	Example: `  guide routes "MG Road" Whitefield
  guide routes Jayanagar "Electronic City" --mode bus`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := transport.NewService()
		routes := svc.Search(args[0], args[1], transport.ParseMode(routesMode))
		if len(routes) == 0 {
			fmt.Printf("No routes found from %q to %q. Try a bigger landmark or locality name.\n", args[0], args[1])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODE\tROUTE\tFROM\tTO\tTIME\tFARE\tNOTES")
		for _, r := range routes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d min\t₹%d\t%s\n",
				r.Type, routeLabel(r), r.FromStop, r.ToStop, r.DurationMin, r.Fare, routeNotes(r))
		}
		return w.Flush()
	},
}

func init() {
	routesCmd.Flags().StringVar(&routesMode, "mode", "all", "transport mode: all, bus, metro or cab")
	rootCmd.AddCommand(routesCmd)
}

func routeLabel(r transport.Route) string {
	switch {
	case r.LineName != "":
		return r.LineName
	case r.RouteID != "":
		return r.RouteID
	default:
		return r.Operator
	}
}

func routeNotes(r transport.Route) string {
	notes := ""
	if r.AC {
		notes += "AC, "
	}
	if r.NextArrivalMin > 0 {
		notes += fmt.Sprintf("next in %d min, ", r.NextArrivalMin)
	}
	if r.Crowding != "" {
		notes += string(r.Crowding) + " crowd, "
	}
	if r.DistanceKM > 0 {
		notes += fmt.Sprintf("%.1f km, ", r.DistanceKM)
	}
	if len(notes) >= 2 {
		notes = notes[:len(notes)-2]
	}
	return notes
}
