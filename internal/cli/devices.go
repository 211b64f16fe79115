package cli

import (
	"context"
	"fmt"

	"github.com/qsecurex/portal/pkg/client"
	"github.com/spf13/cobra"
)

func newDeviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"device"},
		Short:   "Manage devices bound to your licenses",
	}

	cmd.AddCommand(newDeviceListCmd())
	cmd.AddCommand(newDeviceRegisterCmd())
	cmd.AddCommand(newDeviceRemoveCmd())

	return cmd
}

func newDeviceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := apiClient.Devices().List(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(devices)
			}

			table := NewTable("ID", "DEVICE", "NAME", "TYPE", "LICENSE", "REGISTERED")
			for _, d := range devices {
				name := "-"
				if d.DeviceName != nil {
					name = *d.DeviceName
				}
				table.AddRow(
					d.ID,
					truncate(d.DeviceID, 24),
					truncate(name, 20),
					d.DeviceType,
					truncate(d.LicenseID, 12),
					d.RegisteredAt.Format("2006-01-02"),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newDeviceRegisterCmd() *cobra.Command {
	var req client.RegisterDeviceRequest

	cmd := &cobra.Command{
		Use:   "register <device-id>",
		Short: "Bind a device to one of your licenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.DeviceID = args[0]
			d, err := apiClient.Devices().Register(context.Background(), req)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(d)
			}
			fmt.Printf("Device %s registered on license %s\n", d.DeviceID, d.LicenseID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.DeviceName, "name", "", "display name")
	cmd.Flags().StringVar(&req.DeviceType, "type", "mac", "device type: mac, windows, linux, android")
	cmd.Flags().StringVar(&req.LicenseID, "license", "", "license to bind to (default: first with a free slot)")

	return cmd
}

func newDeviceRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Unbind a device",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Devices().Remove(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Device %s removed\n", args[0])
			return nil
		},
	}
}
