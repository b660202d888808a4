// Package main is the entry point for the hockeymetrics CLI tool, which turns
// NHL game event streams into per-player, per-period shot metrics.
package main

import "github.com/pable/go-hockey-metrics/cmd"

func main() {
	cmd.Execute()
}
