/*
Copyright © 2026 the Sketch authors.
This file is part of Sketch.

Sketch is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Sketch is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Sketch.  If not, see <http://www.gnu.org/licenses/>.
*/

package sketchutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/sketch"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Sketch.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the verbosity of solver and edit diagnostics.
              The choices are "panic", "fatal", "error", "warning", "info",
              and "debug".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SceneFile",
			usage: `
              SceneFile is the path of the serialized scene to operate on.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), dimsCmd.Flags()},
		},
		{
			name: "SceneFiles",
			usage: `
              SceneFiles is a list of paths of serialized scenes to
              summarize.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{statsCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the solved scene will be
              written. If OutputFile is empty, the solved scene is not
              saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags()},
		},
		{
			name: "Vars",
			usage: `
              Vars maps variable names to the values or formulas to set
              in the scene before solving, overriding the values stored
              in the scene file.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{solveCmd.Flags()},
		},
		{
			name: "MaxIterations",
			usage: `
              MaxIterations is the number of relaxation sweeps the solver
              runs before giving up on convergence.`,
			defaultVal: sketch.DefaultMaxIterations,
			flagsets:   []*pflag.FlagSet{solveCmd.Flags()},
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the largest constraint residual at which the
              solution counts as converged.`,
			defaultVal: sketch.DefaultTolerance,
			flagsets:   []*pflag.FlagSet{solveCmd.Flags()},
		},
		{
			name: "DimensionsFile",
			usage: `
              DimensionsFile is the path of the workbook the dims command
              writes.`,
			defaultVal: "dimensions.xlsx",
			flagsets:   []*pflag.FlagSet{dimsCmd.Flags()},
		},
		{
			name: "DimensionIDs",
			usage: `
              DimensionIDs lists the identifiers of the dimensions to
              export. The default is an empty list, which exports all of
              them.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{dimsCmd.Flags()},
		},
		{
			name: "ScenarioFile",
			usage: `
              ScenarioFile is the path of the TOML scenario the check
              command evaluates.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{checkCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SKETCH")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(solveCmd)
	Root.AddCommand(statsCmd)
	Root.AddCommand(dimsCmd)
	Root.AddCommand(checkCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging verbosity.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("sketch: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("sketch: problem setting log level: %v", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "sketch",
	Short: "A parametric 2D drawing engine.",
	Long: `Sketch loads, solves, and reports on parametric 2D drawings.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'SKETCH_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Sketch.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Sketch v%s\n", sketch.Version)
		cmd.Printf("Sketch v%s\n", sketch.Version)
	},
	DisableAutoGenTag: true,
}

// solveCmd is a command that runs the constraint solver on a scene.
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the constraints in a scene.",
	Long: `solve loads the scene specified by the SceneFile configuration
variable, applies any variable settings given in Vars, and runs the
relaxation solver. If OutputFile is set, the solved scene is written there.
The command fails if the solver does not converge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sceneFile, err := checkSceneFile(Cfg.GetString("SceneFile"))
		if err != nil {
			return err
		}
		var outputFile string
		if f := Cfg.GetString("OutputFile"); f != "" {
			outputFile, err = checkOutputFile(f)
			if err != nil {
				return err
			}
		}
		return Solve(cmd, sceneFile, outputFile,
			GetStringMapString("Vars", Cfg),
			Cfg.GetInt("MaxIterations"), Cfg.GetFloat64("Tolerance"))
	},
	DisableAutoGenTag: true,
}

// statsCmd is a command that summarizes the contents of scenes.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the contents of scenes.",
	Long: `stats prints, for each scene listed in the SceneFiles
configuration variable, the number of primitives, constraints, and
variables it holds, its spatial extent, and statistics of its current
constraint residuals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandStringSlice(Cfg.GetStringSlice("SceneFiles"))
		if len(files) == 0 {
			return fmt.Errorf("sketch: there are no scenes to summarize; please fill in the SceneFiles configuration variable and try again")
		}
		return Stats(cmd, files)
	},
	DisableAutoGenTag: true,
}

// dimsCmd is a command that exports dimension measurements to a
// spreadsheet.
var dimsCmd = &cobra.Command{
	Use:   "dims",
	Short: "Export dimensions to a workbook.",
	Long: `dims loads the scene specified by the SceneFile configuration
variable and writes its dimensions, constraints, and variables to the
xlsx workbook specified by DimensionsFile. If DimensionIDs is not empty,
only the dimensions it lists are exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sceneFile, err := checkSceneFile(Cfg.GetString("SceneFile"))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("DimensionsFile"))
		if err != nil {
			return err
		}
		ids, err := cast.ToIntSliceE(Cfg.Get("DimensionIDs"))
		if err != nil {
			return fmt.Errorf("sketch: reading 'DimensionIDs': %v", err)
		}
		return WriteDimensions(sceneFile, outputFile, ids)
	},
	DisableAutoGenTag: true,
}

// checkCmd is a command that evaluates a solver scenario.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a solver scenario.",
	Long: `check runs the scenario described by the TOML file specified in
the ScenarioFile configuration variable: it loads the scenario's scene,
solves it, and verifies the measurements the scenario lists. The command
fails if any measurement is out of tolerance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := os.ExpandEnv(Cfg.GetString("ScenarioFile"))
		if f == "" {
			return fmt.Errorf("sketch: there is no scenario to evaluate; please fill in the ScenarioFile configuration variable and try again")
		}
		return CheckScenario(cmd, f)
	},
	DisableAutoGenTag: true,
}
