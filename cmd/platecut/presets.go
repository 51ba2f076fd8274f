package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PlateCut/internal/project"
)

func newPresetsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List job templates, plate presets and offcuts on hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := project.LoadTemplates(o.templatePath())
			if err != nil {
				return err
			}
			inv, err := project.LoadInventory(o.inventoryPath())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TEMPLATE\tITEMS\tPIECES\tDESCRIPTION")
			for _, t := range templates.Templates {
				pieces := 0
				for _, it := range t.Items {
					pieces += it.Quantity
				}
				printer.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.Name, len(t.Items), pieces, t.Description)
			}
			fmt.Fprintln(tw, "\t\t\t")
			fmt.Fprintln(tw, "PLATE\tWIDTH\tHEIGHT\tPRICE")
			for _, p := range inv.Plates {
				printer.Fprintf(tw, "%s\t%.0f\t%.0f\t%s\n", p.Name, p.Width, p.Height, formatMoney(p.UnitPrice))
			}
			if len(inv.Offcuts) > 0 {
				fmt.Fprintln(tw, "\t\t\t")
				fmt.Fprintln(tw, "OFFCUT\tWIDTH\tHEIGHT\tQTY")
				for _, oc := range inv.Offcuts {
					printer.Fprintf(tw, "%s\t%.0f\t%.0f\t%d\n", oc.Name, oc.Width, oc.Height, oc.Quantity)
				}
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(newBackupCmd(o), newRestoreCmd(o), newImportInventoryCmd(o))
	return cmd
}

func newBackupCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup FILE",
		Short: "Write config, templates and inventory to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadAppConfig(o.configPath())
			if err != nil {
				return err
			}
			templates, err := project.LoadTemplates(o.templatePath())
			if err != nil {
				return err
			}
			inv, err := project.LoadInventory(o.inventoryPath())
			if err != nil {
				return err
			}
			return project.ExportAllData(args[0], cfg, templates, inv)
		},
	}
}

func newRestoreCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace config, templates and inventory from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(o.configPath(), backup.Config); err != nil {
				return err
			}
			if err := project.SaveTemplates(o.templatePath(), backup.Templates); err != nil {
				return err
			}
			if err := project.SaveInventory(o.inventoryPath(), backup.Inventory); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored backup from %s (version %s)\n", backup.CreatedAt, backup.Version)
			return nil
		},
	}
}

func newImportInventoryCmd(o *rootOptions) *cobra.Command {
	var offcuts bool
	cmd := &cobra.Command{
		Use:   "import-inventory FILE",
		Short: "Merge plates and offcuts from an inventory file, or offcuts from a CSV/XLSX list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(o.inventoryPath())
			if err != nil {
				return err
			}
			if offcuts {
				imported, err := importFile(args[0])
				if err != nil {
					return err
				}
				inv.Offcuts = append(inv.Offcuts, imported.Offcuts()...)
			} else if inv, err = project.ImportInventory(args[0], inv); err != nil {
				return err
			}
			if err := project.SaveInventory(o.inventoryPath(), inv); err != nil {
				return err
			}
			printer.Fprintf(cmd.OutOrStdout(), "inventory now has %d plates and %d offcuts\n", len(inv.Plates), len(inv.Offcuts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&offcuts, "offcuts", false, "read FILE as an offcut list (.csv or .xlsx)")
	return cmd
}
