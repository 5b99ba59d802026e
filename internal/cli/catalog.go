package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koptimizer/inferprofit/internal/render"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "catalog [table]",
		Short:     "Show reference data",
		Long:      "catalog prints one reference table, or every table when none is named.\nTables: " + strings.Join(render.TableNames, ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: render.TableNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if export, _ := cmd.Flags().GetBool("export"); export {
				data, err := a.cat.Marshal()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			t := a.cat.Tables()
			if a.output == "json" {
				return a.emit(out, t, nil)
			}
			if len(args) == 1 {
				return render.Catalog(out, t, args[0])
			}
			for i, name := range render.TableNames {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s\n", name)
				if err := render.Catalog(out, t, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("export", false, "Write the full catalog as YAML, suitable for --catalog")
	return cmd
}
