package main

import (
	"fmt"
	"os"

	"github.com/glabtree/glabtree/internal/cli"
	"github.com/glabtree/glabtree/internal/utils"
)

// main is the entry point for the glabtree command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(verboseRequested())
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}

// verboseRequested pre-scans the arguments: the logger must exist before
// cobra parses the flags.
func verboseRequested() bool {
	for _, argumentValue := range os.Args[1:] {
		if argumentValue == "--verbose" {
			return true
		}
	}
	return false
}
