package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/namma-guide/guide-go/pkg/discovery"
)

var (
	placesLocation string
	placesCategory string
)

var placesCmd = &cobra.Command{
	Use:   "places [query]",
	Short: "Find food, cafes, shopping and more around Bengaluru",
	Example: `  guide places dosa
  guide places --category cafe --location Koramangala
  guide places "filter coffee"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		svc := discovery.NewService()
		found := svc.Nearby(query, placesLocation, discovery.ParseCategory(placesCategory))
		if len(found) == 0 {
			fmt.Println("Nothing matched. Try a broader query or drop a filter.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCATEGORY\tWHERE\tRATING\tPRICE\tTAGS")
		for _, p := range found {
			fmt.Fprintf(w, "%s\t%s\t%s (%.1f km)\t%.1f\t%s\t%s\n",
				p.Name, p.Category, p.Address, p.DistanceKM, p.Rating, p.PriceRange, strings.Join(p.Tags, ", "))
		}
		return w.Flush()
	},
}

func init() {
	placesCmd.Flags().StringVar(&placesLocation, "location", "", "neighbourhood to search around")
	placesCmd.Flags().StringVar(&placesCategory, "category", "", "food, cafe, shopping, emergency or pg")
	rootCmd.AddCommand(placesCmd)
}
