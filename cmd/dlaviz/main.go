// dlaviz renders msgpack graph snapshots as Graphviz DOT for external
// visualization. It is a diagnostic tool; the analysis itself never shells
// out to it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dla/internal/ir"
	"dla/internal/snapshot"
	"dla/internal/typegraph"
)

var rootCmd = &cobra.Command{
	Use:   "dlaviz <snapshot.msgpack>",
	Short: "Render a layout-analysis graph snapshot as DOT",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

var outPath string

func init() {
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "write DOT here instead of stdout")
}

func run(cmd *cobra.Command, args []string) error {
	s, err := snapshot.ReadFile(args[0])
	if err != nil {
		return err
	}
	// The snapshot references values by ID only, so rebuild it over a
	// module stub wide enough to satisfy every origin.
	ts, err := snapshot.Restore(s, stubModule(s), nil)
	if err != nil {
		return err
	}
	if outPath != "" {
		return ts.DumpDotFile(outPath)
	}
	return ts.WriteDot(cmd.OutOrStdout())
}

// stubModule builds a module whose values cover the snapshot's origins:
// plain origins become pointer values, field origins become functions
// returning a struct with enough fields.
func stubModule(s *snapshot.Snapshot) *ir.Module {
	maxVal := uint32(0)
	fieldCount := map[uint32]uint32{}
	for _, o := range s.Origins {
		if o.Value > maxVal {
			maxVal = o.Value
		}
		if o.Field != typegraph.NoField && o.Field >= fieldCount[o.Value] {
			fieldCount[o.Value] = o.Field + 1
		}
	}

	m := ir.NewModule()
	ptr := m.Types.Intern(ir.Type{Kind: ir.KindPointer})
	i64 := m.Types.Intern(ir.Type{Kind: ir.KindInt, Bits: 64})
	for id := uint32(1); id <= maxVal; id++ {
		name := fmt.Sprintf("v%d", id)
		if n, ok := fieldCount[id]; ok {
			fields := make([]ir.TypeID, n)
			for i := range fields {
				fields[i] = i64
			}
			m.AddFunction(name, m.Types.AddStruct(fields))
		} else {
			m.AddValue(name, ptr)
		}
	}
	return m
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
