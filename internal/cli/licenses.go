package cli

import (
	"context"
	"fmt"

	"github.com/qsecurex/portal/pkg/client"
	"github.com/spf13/cobra"
)

func newLicenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "licenses",
		Aliases: []string{"license", "lic"},
		Short:   "List licenses and request free ones",
	}

	cmd.AddCommand(newLicenseListCmd())
	cmd.AddCommand(newLicenseRequestCmd())
	cmd.AddCommand(newLicenseRequestsCmd())

	return cmd
}

func newLicenseListCmd() *cobra.Command {
	var showKeys bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your licenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			licenses, err := apiClient.Licenses().List(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(licenses)
			}
			if len(licenses) == 0 {
				fmt.Println("No licenses yet. Run 'qsecurex buy order <plan>' to purchase one.")
				return nil
			}
			renderLicenses(licenses, showKeys)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKeys, "show-keys", false, "print full license keys")
	return cmd
}

func newLicenseRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "request-free <personal|pro>",
		Short:     "Ask an administrator for a free license",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"personal", "pro"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := apiClient.Licenses().RequestFree(context.Background(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(req)
			}
			fmt.Printf("Request %s submitted for the %s plan (%s)\n", req.ID, req.RequestedPlan, req.Status)
			return nil
		},
	}
}

func newLicenseRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List your free license requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := apiClient.Licenses().FreeRequests(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(reqs)
			}
			renderFreeRequests(reqs)
			return nil
		},
	}
}

func renderLicenses(licenses []*client.License, showKeys bool) {
	table := NewTable("ID", "PLAN", "KEY", "STATUS", "DEVICES", "PURCHASED")
	for _, l := range licenses {
		key := maskKey(l.LicenseKey)
		if showKeys {
			key = l.LicenseKey
		}
		table.AddRow(
			truncate(l.ID, 12),
			l.Plan,
			key,
			formatStatus(l.Status),
			fmt.Sprintf("%d/%d", l.DeviceCount, l.MaxDevices),
			l.PurchaseDate.Format("2006-01-02"),
		)
	}
	table.Render()
}

func renderFreeRequests(reqs []*client.FreeRequest) {
	table := NewTable("ID", "USER", "PLAN", "STATUS", "CREATED")
	for _, r := range reqs {
		table.AddRow(
			r.ID,
			truncate(r.UserID, 12),
			r.RequestedPlan,
			formatStatus(r.Status),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// maskKey keeps only the last group of a XXXX-XXXX-XXXX-XXXX key visible
func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "****-****-****-" + key[len(key)-4:]
}
