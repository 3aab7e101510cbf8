// Command solve reads a netlist JSON file from disk, solves it, and
// prints the result. It is grounded on the teacher's cmd/main.go (read
// netlist file, parse, print node voltages and branch currents), restyled
// onto github.com/spf13/cobra and pkg/netlist's JSON request shape
// instead of SPICE text, and onto pkg/solver's richer per-component
// result instead of a bare map[string][]float64.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/DarsenOP/tapece/internal/logging"
	"github.com/DarsenOP/tapece/pkg/analysis"
	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/netlist"
	"github.com/DarsenOP/tapece/pkg/solver"
	"github.com/DarsenOP/tapece/pkg/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "solve <netlist.json>",
		Short: "Solve a DC circuit netlist and print node voltages and component currents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("solve", logLevel)

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading netlist file: %w", err)
			}

			circ, err := netlist.Parse(body)
			if err != nil {
				log.Error("netlist rejected", "error", err)
				return err
			}
			log.Info("netlist parsed", "components", len(circ.Components()))

			res, err := solver.Solve(circ)
			if err != nil {
				log.Error("solve failed", "error", err)
				return err
			}

			if asJSON {
				return printJSON(res)
			}
			printTable(circ, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw solver result as JSON instead of a table")
	return cmd
}

func printJSON(res *solver.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printTable(circ *circuit.Circuit, res *solver.Result) {
	fmt.Println("Node Voltages:")
	nodes := make([]int, 0, len(res.NodeVoltages))
	for n := range res.NodeVoltages {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	for _, n := range nodes {
		fmt.Printf("  V(%d) = %s\n", n, util.FormatValueFactor(res.NodeVoltages[n], "V"))
	}

	canonical := analysis.CanonicalIDs(circ)
	comps := circ.Components()
	sort.Slice(comps, func(i, j int) bool { return canonical[comps[i].ID()] < canonical[comps[j].ID()] })

	fmt.Println("\nComponents:")
	for _, comp := range comps {
		cr := res.Components[comp.ID()]
		fmt.Printf("  %s: V=%s  I=%s  P=%s (%s)\n",
			canonical[comp.ID()],
			util.FormatValueFactor(cr.Voltage, "V"),
			util.FormatValueFactor(cr.Current, "A"),
			util.FormatValueFactor(cr.Power, "W"),
			analysis.PowerDescription(cr.Power))
	}

	fmt.Printf("\nMax residual: %.3e\n", res.MaxResidual)
	fmt.Printf("Power balance: %s (tolerance %.3e)\n", util.FormatValueFactor(res.PowerBalance, "W"), res.PowerBalanceTolerance)
}
