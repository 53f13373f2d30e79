package main

import (
	"os"

	"bennypowers.dev/varmotion/internal/commands"
	"bennypowers.dev/varmotion/internal/log"
	"github.com/pivotal-cf/jhanda"
)

func main() {
	var global struct {
		Help    bool `short:"h" long:"help"    description:"prints this usage information" default:"false"`
		Version bool `short:"v" long:"version" description:"prints the varmotion version"  default:"false"`
		Verbose bool `long:"verbose"           description:"logs per-frame detail to stderr" default:"false"`
	}

	args, err := jhanda.Parse(&global, os.Args[1:])
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	globalFlagsUsage, err := jhanda.PrintUsage(global)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	if global.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	var command string
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	if global.Version {
		command = "version"
	}
	if global.Help || command == "" {
		command = "help"
	}

	commandSet := jhanda.CommandSet{}
	commandSet["help"] = commands.NewHelp(os.Stdout, globalFlagsUsage, commandSet)
	commandSet["version"] = commands.NewVersion(os.Stdout)
	commandSet["run"] = commands.NewRun(os.Stdout)
	commandSet["resolve"] = commands.NewResolve(os.Stdout)
	commandSet["check"] = commands.NewCheck(os.Stdout)

	if err := commandSet.Execute(command, args); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
