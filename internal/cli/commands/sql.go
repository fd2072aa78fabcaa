package commands

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"

	"github.com/habanero-go/habanero/internal/orm/query"
	"github.com/habanero-go/habanero/internal/orm/sqlgen"
)

// NewSQLCommand creates the sql command
func NewSQLCommand() *cobra.Command {
	var (
		orderBy string
		where   []string
	)

	cmd := &cobra.Command{
		Use:   "sql <class>",
		Short: "Show the SELECT statement for a class",
		Long: `Print the SELECT statement used to load objects of a class in the
configured database's dialect, followed by its arguments.

Order criteria may name properties of related classes; each relationship
path is joined once.`,
		Example: `  habanero sql Contact
  habanero sql Contact --order "Manager.Surname, Age DESC" --where Surname=Smith`,
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
			var cond squirrel.Sqlizer
			if len(criteria) > 0 {
				if cond, err = sqlgen.WhereProps(cd, criteria); err != nil {
					return err
				}
			}

			var oc *query.OrderCriteria
			if orderBy != "" {
				if oc, err = query.OrderCriteriaFromString(orderBy); err != nil {
					return err
				}
			}

			dialect, err := env.cfg.Database.Dialect()
			if err != nil {
				return err
			}
			sb, err := sqlgen.New(dialect).Select(cd, oc, cond)
			if err != nil {
				return err
			}
			stmt, stmtArgs, err := sb.ToSql()
			if err != nil {
				return err
			}

			fmt.Fprintln(env.out, stmt)
			for i, arg := range stmtArgs {
				fmt.Fprintf(env.out, "  %d: %v\n", i+1, arg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orderBy, "order", "", "order criteria, e.g. \"Surname, Age DESC\"")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Property=value condition (repeatable)")

	return cmd
}
