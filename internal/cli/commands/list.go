package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habanero-go/habanero/internal/cli/ui"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var (
		orderBy string
		where   []string
	)

	cmd := &cobra.Command{
		Use:   "list <class>",
		Short: "Load and print business objects",
		Long: `Load the objects of a class from the configured database and print
them as a table, one column per property.`,
		Example: `  habanero list Contact --order "Surname"
  habanero list Contact --where DepartmentID=3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.sync()

			col, err := env.loadClassDefs(nil)
			if err != nil {
				return err
			}
			cd, err := env.findClass(col, args[0])
			if err != nil {
				return err
			}
			criteria, err := parseWhere(where)
			if err != nil {
				return err
			}

			store, err := openStore(env.cfg.Database, env.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			objs, err := store.LoadCollection(cmd.Context(), cd, criteria, orderBy)
			if err != nil {
				return err
			}

			defs := cd.PropDefs.PropDefs()
			headers := make([]string, len(defs))
			for i, def := range defs {
				headers[i] = def.Name
			}
			table := ui.NewTable(env.out, env.noColor, headers...)
			for _, obj := range objs {
				cells := make([]string, len(defs))
				for i, def := range defs {
					prop, err := obj.Props().Get(def.Name)
					if err != nil {
						return err
					}
					cells[i] = prop.PropertyValueString()
				}
				table.AddRow(cells...)
			}
			table.Render()

			fmt.Fprintf(env.out, "\n%d %s objects\n", len(objs), cd.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&orderBy, "order", "", "order criteria, e.g. \"Surname, Age DESC\"")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Property=value condition (repeatable)")

	return cmd
}
