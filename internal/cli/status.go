package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show account and download summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				if user, err := apiClient.GetCurrentUser(ctx); err == nil {
					summary["user"] = user
				}
				if licenses, err := apiClient.Licenses().List(ctx); err == nil {
					summary["licenses"] = len(licenses)
				}
				if quota, err := apiClient.Downloads().Remaining(ctx); err == nil {
					summary["freeDownloads"] = quota
				}
				return printOutput(summary)
			}

			fmt.Println("QSecureX Account")
			fmt.Println(strings.Repeat("=", 40))

			user, err := apiClient.GetCurrentUser(ctx)
			if err != nil {
				fmt.Printf("  Account:        (error: %v)\n", err)
			} else {
				fmt.Printf("  Account:        %s (%s)\n", user.Email, user.Role)
			}

			licenses, err := apiClient.Licenses().List(ctx)
			if err != nil {
				fmt.Printf("  Licenses:       (error: %v)\n", err)
			} else {
				active := 0
				for _, l := range licenses {
					if l.Status == "active" {
						active++
					}
				}
				fmt.Printf("  Licenses:       %d active (%d total)\n", active, len(licenses))
			}

			devices, err := apiClient.Devices().List(ctx)
			if err != nil {
				fmt.Printf("  Devices:        (error: %v)\n", err)
			} else {
				fmt.Printf("  Devices:        %d registered\n", len(devices))
			}

			quota, err := apiClient.Downloads().Remaining(ctx)
			if err != nil {
				fmt.Printf("  Free downloads: (error: %v)\n", err)
			} else {
				state := "open"
				if !quota.Enabled {
					state = "disabled"
				}
				fmt.Printf("  Free downloads: %d of %d left (%s)\n", quota.Remaining, quota.Limit, state)
			}

			return nil
		},
	}
}
