package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netauto/internal/validator"
)

var (
	validateDeviceType string
	validateDeep       bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Check a device configuration without touching the device",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateDeviceType, "device-type", "t", "cisco_ios", "device type of the config")
	validateCmd.Flags().BoolVar(&validateDeep, "deep", false, "use the structural parser")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	result := validator.New(validateDeep).Validate(validateDeviceType, string(data))
	if outputJSON {
		if err := printJSON(cmd, result); err != nil {
			return err
		}
	} else {
		cmd.Printf("status: %s\n", result.Status)
		for _, e := range result.Errors {
			cmd.Printf("  error: %s\n", e)
		}
		for _, action := range result.DryRun.Actions {
			cmd.Printf("  would: %s\n", action)
		}
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d validation errors", len(result.Errors))
	}
	return nil
}
