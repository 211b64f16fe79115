package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Portal administration (admin role required)",
	}

	cmd.AddCommand(newAdminStatsCmd())
	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminSendLicenseCmd())
	cmd.AddCommand(newAdminLicensesCmd())
	cmd.AddCommand(newAdminPurchasesCmd())
	cmd.AddCommand(newAdminRefundsCmd())
	cmd.AddCommand(newAdminRequestsCmd())
	cmd.AddCommand(newAdminDownloadsCmd())

	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show portal totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := apiClient.Admin().Stats(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(stats)
			}
			fmt.Printf("Users:                 %d\n", stats.TotalUsers)
			fmt.Printf("Active licenses:       %d\n", stats.ActiveLicenses)
			fmt.Printf("Revenue:               %s\n", stats.TotalRevenue)
			fmt.Printf("Pending free requests: %d\n", stats.PendingFreeRequests)
			return nil
		},
	}
}

func newAdminUsersCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := apiClient.Admin().Users(context.Background(), page, pageSize)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(users)
			}

			table := NewTable("ID", "EMAIL", "NAME", "ROLE", "JOINED")
			for _, u := range users.Items {
				table.AddRow(u.ID, u.Email, truncate(u.Name, 24), u.Role, u.CreatedAt.Format("2006-01-02"))
			}
			table.Render()
			fmt.Printf("\nPage %d of %d (%d users)\n", users.Page, users.TotalPages, users.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "users per page")

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user and everything they own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Admin().DeleteUser(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("User %s deleted\n", args[0])
			return nil
		},
	})

	return cmd
}

func newAdminSendLicenseCmd() *cobra.Command {
	var plan, key string

	cmd := &cobra.Command{
		Use:   "send-license <user-id>",
		Short: "Grant a license to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := apiClient.Admin().SendLicense(context.Background(), args[0], plan, key)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(l)
			}
			fmt.Printf("Sent %s license %s to user %s\n", l.Plan, l.LicenseKey, l.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&plan, "plan", "", "plan: personal, pro or enterprise")
	cmd.Flags().StringVar(&key, "key", "", "license key (XXXX-XXXX-XXXX-XXXX)")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newAdminLicensesCmd() *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "List every license",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if history {
				entries, err := apiClient.Admin().LicenseHistory(ctx)
				if err != nil {
					return err
				}
				if getOutputFormat() != "table" {
					return printOutput(entries)
				}
				table := NewTable("KEY", "PLAN", "USER", "EMAIL", "SENT")
				for _, e := range entries {
					sent := "-"
					if e.SentAt != nil {
						sent = e.SentAt.Format("2006-01-02 15:04")
					}
					table.AddRow(e.LicenseKey, e.Plan, truncate(e.UserName, 20), e.UserEmail, sent)
				}
				table.Render()
				return nil
			}

			licenses, err := apiClient.Admin().Licenses(ctx)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(licenses)
			}
			renderLicenses(licenses, true)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "only manually sent licenses")
	return cmd
}

func newAdminPurchasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchases",
		Short: "List purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			purchases, err := apiClient.Admin().Purchases(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(purchases)
			}

			table := NewTable("ORDER", "USER", "PLAN", "AMOUNT", "STATUS", "CREATED")
			for _, p := range purchases {
				table.AddRow(
					p.OrderID,
					truncate(p.UserID, 12),
					p.Plan,
					p.Amount+" "+p.Currency,
					formatStatus(p.Status),
					p.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newAdminRefundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refunds",
		Short: "List charged orders that issued no license",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := apiClient.Admin().CapturedOrders(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(orders)
			}
			if len(orders) == 0 {
				fmt.Println("No payments awaiting refund")
				return nil
			}

			table := NewTable("ORDER", "PAYMENT", "USER", "PLAN", "AMOUNT", "CAPTURED")
			for _, o := range orders {
				table.AddRow(
					o.ID,
					o.PaymentID,
					truncate(o.UserID, 12),
					o.Plan,
					fmt.Sprintf("%.2f %s", float64(o.AmountMinor)/100, o.Currency),
					o.UpdatedAt.Format("2006-01-02 15:04"),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newAdminRequestsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review free license requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := apiClient.Admin().FreeRequests(context.Background(), status)
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

	cmd.Flags().StringVar(&status, "status", "", "filter: pending, approved or rejected")

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a request and issue the license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := apiClient.Admin().ApproveFreeRequest(context.Background(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(l)
			}
			fmt.Printf("Approved. Issued %s license %s\n", l.Plan, l.LicenseKey)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := apiClient.Admin().RejectFreeRequest(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Request %s %s\n", r.ID, r.Status)
			return nil
		},
	})

	return cmd
}

func newAdminDownloadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "downloads",
		Short: "Free download pool settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := apiClient.Admin().DownloadSettings(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(s)
			}
			fmt.Printf("Enabled:   %t\n", s.Enabled)
			fmt.Printf("Used:      %d of %d\n", s.TotalDownloads, s.Limit)
			fmt.Printf("Remaining: %d\n", s.Remaining)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "toggle <true|false>",
		Short:     "Open or close the free download pool",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"true", "false"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[0])
			}
			s, err := apiClient.Admin().SetDownloadsEnabled(context.Background(), enabled)
			if err != nil {
				return err
			}
			fmt.Printf("Free downloads enabled: %t\n", s.Enabled)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear every recorded free download",
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := apiClient.Admin().ResetDownloads(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d download records\n", deleted)
			return nil
		},
	})

	return cmd
}
