package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/habanero-go/habanero/internal/cli/config"
	"github.com/habanero-go/habanero/internal/cli/ui"
	"github.com/habanero-go/habanero/internal/logging"
	"github.com/habanero-go/habanero/internal/orm/persist"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// openStore opens the configured database. Tests replace it.
var openStore = func(cfg config.DatabaseConfig, logger *zap.Logger) (*persist.Store, error) {
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, persist.WithLogger(logger))
	return persist.Open(cfg.Driver, cfg.URL, opts...)
}

// environment is what every command needs: the configuration, a logger and
// the output settings
type environment struct {
	cfg     *config.Config
	baseDir string
	logger  *zap.Logger
	noColor bool
	out     io.Writer
	errOut  io.Writer
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	configPath, _ := cmd.Flags().GetString("config")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	baseDir := "."
	if configPath != "" {
		baseDir = filepath.Dir(configPath)
	}

	return &environment{
		cfg:     cfg,
		baseDir: baseDir,
		logger:  logger,
		noColor: noColor,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

// sync flushes the logger. Syncing stderr fails on some platforms, so the
// error is dropped.
func (e *environment) sync() {
	_ = e.logger.Sync()
}

// loadClassDefs loads the given files and directories into one registry.
// With no paths the configured ones are used, relative to the config file.
func (e *environment) loadClassDefs(paths []string) (*schema.ClassDefCol, error) {
	if len(paths) == 0 {
		paths = e.cfg.ClassDefs.ResolvePaths(e.baseDir)
	}

	loader := schema.NewLoader(e.logger)
	col := schema.NewClassDefCol(schema.WithLogger(e.logger))
	for _, path := range paths {
		loaded, err := loader.LoadPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load class definitions: %w", err)
		}
		if err := col.LoadClassDefs(loaded); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// findClass looks a class up by name, printing close matches when it is not
// loaded
func (e *environment) findClass(col *schema.ClassDefCol, className string) (*schema.ClassDef, error) {
	if cd, ok := col.FindByClassName(className); ok {
		return cd, nil
	}

	known := make([]string, 0, col.Count())
	for _, cd := range col.ClassDefs() {
		known = append(known, cd.ClassName)
	}
	ui.ClassNotFound(className, known, e.noColor).Write(e.errOut)
	return nil, fmt.Errorf("class %s is not defined", className)
}

// parseWhere turns "Property=value" arguments into load criteria
func parseWhere(conditions []string) (map[string]interface{}, error) {
	criteria := make(map[string]interface{}, len(conditions))
	for _, condition := range conditions {
		name, value, ok := strings.Cut(condition, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid condition %q, expected Property=value", condition)
		}
		criteria[name] = value
	}
	return criteria, nil
}
