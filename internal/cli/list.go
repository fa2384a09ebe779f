package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dehvCurtis/RustDefend/internal/detectors"
	"github.com/dehvCurtis/RustDefend/internal/engine"
	"github.com/dehvCurtis/RustDefend/internal/model"
)

func newListDetectorsCmd() *cobra.Command {
	var ecosystem string
	cmd := &cobra.Command{
		Use:   "list-detectors",
		Short: "List available detectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ecos []model.Ecosystem
			if ecosystem != "" {
				var err error
				ecos, err = parseEcosystems(ecosystem)
				if err != nil {
					return err
				}
			}
			return renderDetectorTable(cmd, engine.NewScanner().List(ecos))
		},
	}
	cmd.Flags().StringVar(&ecosystem, "ecosystem", "", "Only list detectors for these ecosystems (comma-separated)")
	return cmd
}

func renderDetectorTable(cmd *cobra.Command, infos []detectors.Info) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Name", "Ecosystem", "Severity", "Confidence", "Description"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, info := range infos {
		eco := string(info.Ecosystem)
		if eco == "" {
			eco = "all"
		}
		table.Append([]string{
			info.ID,
			info.Name,
			eco,
			string(info.Severity),
			string(info.Confidence),
			info.Description,
		})
	}
	table.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d detectors\n", len(infos))
	return nil
}
