/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhc-net/nsg-sync/csv"
	"github.com/nhc-net/nsg-sync/json"
	"github.com/nhc-net/nsg-sync/netbox"
	"github.com/nhc-net/nsg-sync/nsx"
	"github.com/nhc-net/nsg-sync/reconciler"
	"github.com/nhc-net/nsg-sync/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logrus.New()

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation pass over both grouping dimensions",
	Long: `The run command performs the full reconciliation workflow:

1. Reads the "domain" and "env" custom-field choice sets from NetBox
2. Fetches all existing NSX security groups once per dimension
3. For each grouping key, diffs the eligible NetBox prefixes against the
   group membership and creates or patches the group as needed
4. Writes changes.csv and changes.json with the per-group change records

Examples:
  # Dry run - report the changes without touching NSX
  nsg-sync run --netboxUrl https://netbox.example.com --nsxUrl https://nam.example.com

  # Apply the changes
  nsg-sync run --netboxUrl https://netbox.example.com --nsxUrl https://nam.example.com --apply`,
	Run: func(cmd *cobra.Command, args []string) {
		logVerbosity, _ := cmd.Flags().GetString("verbosity")
		logLevel, err := logrus.ParseLevel(logVerbosity)
		if err != nil {
			log.Fatalf("Invalid log level: %s", logVerbosity)
		}
		log.SetLevel(logLevel)
		log.SetFormatter(&logrus.TextFormatter{})
		if viper.GetBool("structuredLogs") {
			log.SetFormatter(&logrus.JSONFormatter{})
		}

		for key, value := range viper.GetViper().AllSettings() {
			log.Debugf("Command Flag: %s = %s", key, value)
		}

		netboxUrl := viper.GetString("netboxUrl")
		if netboxUrl == "" {
			log.Fatal("netboxUrl must be provided")
		}
		nsxUrl := viper.GetString("nsxUrl")
		if nsxUrl == "" {
			log.Fatal("nsxUrl must be provided")
		}

		workingFolderPath, err := filepath.Abs(viper.GetString("workingFolderPath"))
		if err != nil {
			log.Fatalf("Error getting working folder path: %v", err)
		}

		apply := viper.GetBool("apply")
		if !apply {
			log.Info("Running in dry-run mode, no security groups will be created or updated")
		}

		netboxClient := netbox.NewNetboxClient(
			netboxUrl,
			viper.GetString("netboxToken"),
			log,
		)

		nsxClient := nsx.NewNsxClient(
			nsxUrl,
			viper.GetString("nsxToken"),
			log,
		)

		reconcilerClient := reconciler.NewReconcilerClient(
			netboxClient,
			nsxClient,
			viper.GetString("vrfName"),
			apply,
			log,
		)

		ctx := context.Background()
		changes := []types.GroupChange{}

		consumerChanges, err := reconcilerClient.ReconcileConsumerGroups(ctx)
		if err != nil {
			log.Errorf("Error reconciling consumer groups: %v", err)
		}
		changes = append(changes, consumerChanges...)

		environmentChanges, err := reconcilerClient.ReconcileEnvironmentGroups(ctx)
		if err != nil {
			log.Errorf("Error reconciling environment groups: %v", err)
		}
		changes = append(changes, environmentChanges...)

		jsonClient := json.NewJsonClient(
			workingFolderPath,
			log,
		)
		jsonClient.Export(types.RunSummary{
			GeneratedAt: time.Now(),
			NetboxHost:  netboxClient.Hostname(),
			NsxHost:     nsxClient.Hostname(),
			Apply:       apply,
			Changes:     changes,
		}, "changes.json")

		changeCsvClient := csv.NewChangeCsvClient(
			workingFolderPath,
			log,
		)
		changeCsvClient.Export(changes)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.PersistentFlags().StringP("netboxUrl", "n", "", "NetBox base URL")
	viper.BindPFlag("netboxUrl", runCmd.PersistentFlags().Lookup("netboxUrl"))
	runCmd.PersistentFlags().String("netboxToken", "", "NetBox API token")
	viper.BindPFlag("netboxToken", runCmd.PersistentFlags().Lookup("netboxToken"))
	runCmd.PersistentFlags().StringP("nsxUrl", "m", "", "Network access manager base URL")
	viper.BindPFlag("nsxUrl", runCmd.PersistentFlags().Lookup("nsxUrl"))
	runCmd.PersistentFlags().String("nsxToken", "", "Network access manager API token")
	viper.BindPFlag("nsxToken", runCmd.PersistentFlags().Lookup("nsxToken"))
	runCmd.PersistentFlags().String("vrfName", "nhc", "VRF name a prefix must belong to in order to be eligible")
	viper.BindPFlag("vrfName", runCmd.PersistentFlags().Lookup("vrfName"))
	runCmd.PersistentFlags().BoolP("apply", "a", false, "Apply changes to NSX instead of reporting them")
	viper.BindPFlag("apply", runCmd.PersistentFlags().Lookup("apply"))
	runCmd.PersistentFlags().StringP("workingFolderPath", "w", ".", "Working folder path to use")
	viper.BindPFlag("workingFolderPath", runCmd.PersistentFlags().Lookup("workingFolderPath"))
}
