package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/engine"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every artifact and check that the shapes agree",
		Long: `Load the catalog, the encoder state and the user tower, bind the encoder
segments to the artifact inputs and check the output against the catalog
embeddings. Exits non-zero on any load error or shape mismatch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			e, err := engine.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			out, err := json.MarshalIndent(e.Summary(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var (
		answers core.UserAnswers
		k       int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the top cities for one set of answers",
		Example: `  citykit recommend --origin India --favorite Japan --vacation Beach --vacation Nature -k 5
  citykit recommend --origin India --distance "Within your Continent" --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			e, err := engine.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			var kp *int
			if cmd.Flags().Changed("k") {
				kp = &k
			}
			cities, err := e.Recommend(cmd.Context(), "", &answers, kp)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(w).Encode(cities)
			}
			for i, c := range cities {
				if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.4f\n", i+1, c.CityID, c.CityName, c.Country, c.Score); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&answers.OriginCountry, "origin", "", "origin country")
	f.StringVar(&answers.FavoriteCountryVisited, "favorite", "", "favorite country visited")
	f.StringSliceVar(&answers.VacationTypes, "vacation", nil, "vacation type (repeatable)")
	f.StringSliceVar(&answers.Seasons, "season", nil, "season (repeatable)")
	f.StringSliceVar(&answers.Budget, "budget", nil, "budget (repeatable)")
	f.StringSliceVar(&answers.PlaceType, "place-type", nil, "place type (repeatable)")
	f.StringVar(&answers.Distance, "distance", "", "travel distance answer")
	f.IntVarP(&k, "k", "k", 0, "number of cities (default ranking.default_k)")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
