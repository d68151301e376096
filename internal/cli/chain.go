package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Play today's word chain",
	}

	cmd.AddCommand(newChainShowCmd())
	cmd.AddCommand(newChainGuessCmd())
	cmd.AddCommand(newChainRevealCmd())

	return cmd
}

func newChainShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current step of today's chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChainRun

			if err := client.Get(cmd.Context(), "/api/v1/chain", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newChainGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <word...>",
		Short: "Guess the word linking the current pair",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"guess": strings.Join(args, " ")}
			var result GuessResult

			if err := client.Post(cmd.Context(), "/api/v1/chain/guess", req, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newChainRevealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal",
		Short: "Reveal the current link for no points",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GuessResult

			if err := client.Post(cmd.Context(), "/api/v1/chain/reveal", nil, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}
