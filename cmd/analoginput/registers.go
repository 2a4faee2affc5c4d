// cmd/analoginput/registers.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamzrod/harp-analoginput/internal/registers"
)

func newRegistersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registers",
		Short: "List the register map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := registers.NewTable()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ADDR\tNAME\tTYPE\tACCESS\tWORDS\tDESCRIPTION")
			for _, r := range table.All() {
				d := r.Descriptor()
				typ := d.Type.String()
				if d.Length > 1 {
					typ = fmt.Sprintf("%s[%d]", typ, d.Length)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", d.Address, d.Name, typ, d.Access, d.WordCount(), d.Description)
			}
			return tw.Flush()
		},
	}
}
