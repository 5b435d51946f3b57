package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tacore/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [NAME]",
	Short: "list indicators, or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := catalog.Builtin()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			e, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}
			lb, err := e.Lookback(nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", e.Name, e.Group, e.Help)
			fmt.Fprintf(cmd.OutOrStdout(), "inputs: %s   outputs: %s   default lookback: %d\n", fields(e), strings.Join(e.Outputs, ", "), lb)

			t := newTable(out, "param", "default", "type", "help")
			for _, p := range e.Params {
				kind := "float"
				if p.Integer {
					kind = "int"
				}
				t.AppendRow([]interface{}{p.Name, strconv.FormatFloat(p.Default, 'g', -1, 64), kind, p.Help})
			}
			t.Render()
			return nil
		}

		group, _ := cmd.Flags().GetString("group")
		t := newTable(out, "name", "group", "inputs", "outputs", "help")
		for _, e := range reg.List(catalog.Group(group)) {
			t.AppendRow([]interface{}{e.Name, e.Group, fields(e), strings.Join(e.Outputs, ","), e.Help})
		}
		t.Render()
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("group", "", "only list this group (overlap, momentum, volatility, statistic, trend, volume, cycle, pattern)")
}

func fields(e *catalog.Entry) string {
	names := make([]string, len(e.Inputs))
	for i, f := range e.Inputs {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}
