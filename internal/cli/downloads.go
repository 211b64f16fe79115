package cli

import (
	"context"
	"fmt"

	"github.com/qsecurex/portal/pkg/client"
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "download",
		Aliases: []string{"downloads", "dl"},
		Short:   "Installer downloads",
	}

	cmd.AddCommand(newDownloadRemainingCmd())
	cmd.AddCommand(newDownloadCheckCmd())
	cmd.AddCommand(newDownloadLinkCmd())

	return cmd
}

func newDownloadRemainingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remaining",
		Short: "Show the free download pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			quota, err := apiClient.Downloads().Remaining(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(quota)
			}
			fmt.Printf("Free downloads remaining: %d of %d\n", quota.Remaining, quota.Limit)
			if !quota.Enabled {
				fmt.Println("Free downloads are currently disabled.")
			}
			return nil
		},
	}
}

func newDownloadCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether you can take a free download",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := apiClient.Downloads().CheckEligibility(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(e)
			}
			if e.Eligible {
				fmt.Println("Eligible for a free download.")
				return nil
			}
			fmt.Printf("Not eligible: %s\n", e.Reason)
			return nil
		},
	}
}

func newDownloadLinkCmd() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:       "link <free|personal|pro>",
		Short:     "Get a signed installer link",
		Long:      "Get a signed installer link. The free tier uses up your one free download.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{client.TierFree, client.TierPersonal, client.TierPro},
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := apiClient.Downloads().Link(context.Background(), args[0], platform)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(map[string]string{"url": link})
			}
			fmt.Println(link)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "target platform (free tier only)")
	return cmd
}
