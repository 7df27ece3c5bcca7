// Package main provides a placeholder entry point for apexsim.
// apexsim is a cycle-accurate simulator of the six-stage in-order scalar
// APEX pipeline (Fetch, Decode, Execute, Memory1, Memory, Writeback).
//
// For the full CLI, use: go run ./cmd/apexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("apexsim - APEX pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: apexsim [options] <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config   Path to a machine configuration JSON file")
	fmt.Println("  -trace    Print a per-cycle stage trace")
	fmt.Println("")
	fmt.Println("After loading, apexsim prompts interactively for an optional data")
	fmt.Println("memory file, whether to simulate, how many cycles to run, and (in")
	fmt.Println("single-step mode) a key to advance or 'q' to stop.")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/apexsim' instead.")
	}
}
