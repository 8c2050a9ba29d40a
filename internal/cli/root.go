// Package cli implements the varname command line tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mirlang/varname"
	"github.com/mirlang/varname/internal/irtext"
	"github.com/mirlang/varname/ir"
)

var (
	cfgFile      string
	values       []string
	allAccessors bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "varname <file.ir>",
	Short: "Infer source-level variable names for IR values",
	Long: `varname parses a textual IR file and reconstructs the source-level
access path (for example "self.pair.0") that produced a given value, by
walking backward through its definition chain.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfer,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .varname.yaml)")
	rootCmd.Flags().StringSliceVar(&values, "value", nil, "value name to query (repeatable; default: all values)")
	rootCmd.Flags().BoolVar(&allAccessors, "all-accessors", false, "look through every accessor call, not just getters on stored properties")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".varname")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VARNAME")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
	allAccessors = configAllAccessors(rootCmd.Flags().Changed("all-accessors"), allAccessors)
}

// configAllAccessors applies the config-file value only when the flag was
// not given explicitly; the command line takes precedence over config.
func configAllAccessors(flagChanged, flagValue bool) bool {
	if viper.IsSet("all-accessors") && !flagChanged {
		return viper.GetBool("all-accessors")
	}
	return flagValue
}

func runInfer(cmd *cobra.Command, args []string) error {
	logger := initLogger()
	defer logger.Sync()

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	file, err := irtext.Parse(string(src))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	var opts varname.Options
	if allAccessors {
		opts |= varname.InferSelfThroughAllAccessors
	}
	return runQueries(file, values, opts, logger, cmd.OutOrStdout())
}

// runQueries resolves the queries and prints one inference block per value.
// The logger is handed to the inference core so --verbose traces the walk.
func runQueries(file *irtext.File, queries []string, opts varname.Options, logger *zap.Logger, out io.Writer) error {
	targets, err := selectValues(file, queries)
	if err != nil {
		return err
	}
	logger.Debug("inference targets selected",
		zap.Int("count", len(targets)),
		zap.Bool("all_accessors", opts&varname.InferSelfThroughAllAccessors != 0))

	inf := varname.NewInferrer(nil, opts, logger)
	for i, v := range targets {
		if i > 0 {
			fmt.Fprintln(out)
		}
		inf.Fprint(out, v)
	}
	return nil
}

// selectValues resolves the queries, or collects every value in the file in
// program order when no query was given.
func selectValues(file *irtext.File, queries []string) ([]*ir.Value, error) {
	if len(queries) > 0 {
		targets := make([]*ir.Value, 0, len(queries))
		for _, name := range queries {
			v := file.Value(name)
			if v == nil {
				return nil, fmt.Errorf("no value named %q", name)
			}
			targets = append(targets, v)
		}
		return targets, nil
	}

	var targets []*ir.Value
	for _, fn := range file.Funcs {
		targets = append(targets, fn.Params...)
		for _, blk := range fn.Blocks {
			for _, in := range blk.Instrs {
				targets = append(targets, in.Results()...)
			}
		}
	}
	return targets, nil
}

func initLogger() *zap.Logger {
	var logger *zap.Logger
	var err error

	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}

	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}
