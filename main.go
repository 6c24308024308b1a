package main

import "event-reconciler/cmd"

func main() {
	cmd.Execute()
}
