package main

import "github.com/rustinb303/ai-pr-watcher/cmd"

func main() {
	cmd.Execute()
}
