package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trivago/boerewors/cmd/boerewors/app"
	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/common/version"
)

const configFileName = ".boerewors"

var cliConfig = &app.Config{}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cliConfig.PipelineFile, "pipeline", "boerewors.hcl",
		"Path to the HCL pipeline file describing stages and jobs.")
	RootCmd.PersistentFlags().StringVar(&cliConfig.WorkDir, "workdir", ".",
		"Working directory jobs are run from.")
	RootCmd.PersistentFlags().IntVar(&cliConfig.Limit, "limit", 0,
		"Maximum number of jobs to run per stage. Zero means unlimited.")
	RootCmd.PersistentFlags().CountVarP(&cliConfig.Verbose, "verbose", "v",
		"Increase log verbosity. May be repeated.")
	RootCmd.PersistentFlags().StringVar(&cliConfig.ReportFile, "report", "",
		"Path to write a YAML run report to. Empty disables the report.")
	RootCmd.PersistentFlags().StringVar(&cliConfig.StatusAddr, "status-addr", "",
		"Address to serve live run status on (e.g. :8080). Empty disables the server.")
	RootCmd.PersistentFlags().StringVar((*string)(&cliConfig.LogLevels), "log_levels", "",
		fmt.Sprintf("A comma separated list of name=level pairs where name is the name of the logger and level is one of: %s", logger.ListLogLevels()))
}

// initConfig lets a .boerewors config file in the working directory or
// home directory supply values for the pipeline, workdir, report and
// status-addr flags when the user didn't pass them explicitly. The other
// flags are not read from the config file.
func initConfig() {
	viper.SetConfigName(configFileName)
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Printf("warning: error loading %s: %v", configFileName, err)
		}
		return
	}

	applyViperDefault("pipeline", &cliConfig.PipelineFile)
	applyViperDefault("workdir", &cliConfig.WorkDir)
	applyViperDefault("report", &cliConfig.ReportFile)
	applyViperDefault("status-addr", &cliConfig.StatusAddr)
}

// applyViperDefault overwrites *dst with the config file's value for key,
// but only when the corresponding flag was left at its default (the user
// never passed it on the command line).
func applyViperDefault(key string, dst *string) {
	if !viper.IsSet(key) {
		return
	}
	if RootCmd.PersistentFlags().Changed(key) {
		return
	}
	*dst = viper.GetString(key)
}

// RootCmd runs the pipeline named by --pipeline and exits non-zero if any
// non-can-fail stage failed.
var RootCmd = &cobra.Command{
	Use:           "boerewors",
	Short:         "A cooperative, single-threaded job pipeline runner",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cliConfig)
		if err != nil {
			return fmt.Errorf("error setting up run: %w", err)
		}
		ok, err := a.Run()
		if err != nil {
			return err
		}
		if !ok {
			os.Exit(1)
		}
		return nil
	},
}

// Execute runs RootCmd and exits the process with a matching status code.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
