package cli

import (
	"github.com/spf13/cobra"
)

func newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Daily lock and score commands",
	}

	cmd.AddCommand(newDailyStatusCmd())
	cmd.AddCommand(newDailyCompleteCmd())

	return cmd
}

func newDailyStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether today's chain has been played",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DailyStatus

			if err := client.Get(cmd.Context(), "/api/v1/daily/status", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newDailyCompleteCmd() *cobra.Command {
	var points int64

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Commit today's play with the given points",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int64{"points": points}
			var result Completion

			if err := client.Post(cmd.Context(), "/api/v1/daily/complete", req, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&points, "points", 0, "Points earned today (required)")
	_ = cmd.MarkFlagRequired("points")

	return cmd
}
