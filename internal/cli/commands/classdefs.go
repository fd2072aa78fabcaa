package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/habanero-go/habanero/internal/cli/ui"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// NewClassDefsCommand creates the classdefs command
func NewClassDefsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classdefs [paths...]",
		Short: "Load and validate class definitions",
		Long: `Load class definition files and directories, print the classes they
define and check that keys and relationships are consistent.

With no paths the classdefs.paths of the configuration are loaded.`,
		Example: `  habanero classdefs
  habanero classdefs classdefs/contacts.yml classdefs/shared`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.sync()

			col, err := env.loadClassDefs(args)
			if err != nil {
				return err
			}

			table := ui.NewTable(env.out, env.noColor, "Assembly", "Class", "Table", "Props", "Keys", "Relationships")
			for _, cd := range col.ClassDefs() {
				table.AddRow(
					cd.AssemblyName,
					cd.ClassName,
					cd.TableName,
					strconv.Itoa(cd.PropDefs.Count()),
					strconv.Itoa(cd.KeyDefs.Count()),
					strconv.Itoa(cd.Relationships.Count()),
				)
			}
			table.Render()

			validator := schema.NewClassDefValidator()
			verr := validator.Validate(col)
			for _, warning := range validator.Warnings() {
				ui.Warning(warning, env.noColor).Write(env.errOut)
			}
			if verr != nil {
				return verr
			}

			fmt.Fprintln(env.out, ui.FormatSuccess(
				fmt.Sprintf("%d class definitions are valid", col.Count()), env.noColor))
			return nil
		},
	}
}
