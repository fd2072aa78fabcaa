package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habanero-go/habanero/internal/cli/ui"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "delete <class>",
		Short: "Delete business objects",
		Long: `Load the objects of a class matching every condition and delete them
in a single transaction. At least one condition is required.`,
		Example: `  habanero delete Contact --where Surname=Smith --where Age=30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(where) == 0 {
				return errors.New("delete requires at least one --where condition")
			}

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

			objs, err := store.LoadCollection(cmd.Context(), cd, criteria, "")
			if err != nil {
				return err
			}
			if len(objs) == 0 {
				ui.Warning(fmt.Sprintf("no %s objects match", cd.Label()), env.noColor).Write(env.errOut)
				return nil
			}

			committer := store.NewCommitter()
			for _, obj := range objs {
				obj.MarkForDelete()
				committer.Add(obj)
			}
			if err := committer.Commit(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(env.out, ui.FormatSuccess(
				fmt.Sprintf("deleted %d %s objects", len(objs), cd.Label()), env.noColor))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "Property=value condition (repeatable)")

	return cmd
}
