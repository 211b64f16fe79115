package cli

import (
	"context"
	"fmt"

	"github.com/qsecurex/portal/pkg/client"
	"github.com/spf13/cobra"
)

func newBuyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Purchase a license",
		Long: `Purchasing is two steps. 'buy order' opens a gateway order that is paid
in the checkout widget; 'buy verify' submits the gateway callback values and
issues the license.`,
	}

	cmd.AddCommand(newBuyOrderCmd())
	cmd.AddCommand(newBuyVerifyCmd())

	return cmd
}

func newBuyOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "order <personal|pro>",
		Short:     "Create a payment order",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"personal", "pro"},
		RunE: func(cmd *cobra.Command, args []string) error {
			checkout, err := apiClient.Payments().CreateOrder(context.Background(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(checkout)
			}

			fmt.Printf("Order:    %s\n", checkout.OrderID)
			fmt.Printf("Plan:     %s\n", checkout.Plan)
			fmt.Printf("Amount:   %s %s\n", formatMinor(checkout.Amount), checkout.Currency)
			fmt.Printf("Key ID:   %s\n", checkout.KeyID)
			return nil
		},
	}
}

func newBuyVerifyCmd() *cobra.Command {
	var req client.VerifyRequest

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a completed payment and receive the license",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Payments().Verify(context.Background(), req)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Println("Payment verified.")
			if result.License != nil {
				fmt.Printf("License key: %s (%s, up to %d devices)\n",
					result.License.LicenseKey, result.License.Plan, result.License.MaxDevices)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.OrderID, "order", "", "gateway order id")
	cmd.Flags().StringVar(&req.PaymentID, "payment", "", "gateway payment id")
	cmd.Flags().StringVar(&req.Signature, "signature", "", "gateway signature")
	cmd.Flags().StringVar(&req.Plan, "plan", "", "plan the order was created for")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("payment")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

// formatMinor renders an amount in minor units (paise) with two decimals
func formatMinor(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
