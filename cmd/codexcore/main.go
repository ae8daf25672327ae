// Command codexcore drives a declarative TaskSetPlan through the
// Task-Set Scheduler, wiring the Layered Configuration Store, the Hook
// Engine, the To-Do Store, the Session Log, and the Compactor together
// for a single workspace.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codexcore: %v\n", err)
		os.Exit(1)
	}
}
