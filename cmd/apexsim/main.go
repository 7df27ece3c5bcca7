// Package main provides the entry point for apexsim, a cycle-accurate
// simulator of the six-stage in-order scalar APEX pipeline.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apex-sim/apexsim/config"
	"github.com/apex-sim/apexsim/core"
	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/loader"
	"github.com/apex-sim/apexsim/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to a machine configuration JSON file")
	trace      = flag.Bool("trace", false, "Print a per-cycle stage trace")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "APEX Pipeline Simulator\n")
		fmt.Fprintf(os.Stderr, "Usage: apexsim [options] <program.asm>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	programPath := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "apexsim: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *trace {
		cfg.Trace = true
	}

	program, err := loader.LoadProgram(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apexsim: %v\n", err)
		os.Exit(1)
	}

	regs := emu.NewRegisterFile(cfg.Registers)
	mem := emu.NewDataMemory(cfg.DataMemoryCells)

	console := bufio.NewReader(os.Stdin)
	fmt.Printf("APEX_CPU: loaded %d instructions, PC initialized to %d\n", len(program), cfg.StartPC)

	if askYesNo(console, "load memory? (y/n) ") {
		fmt.Print("filename: ")
		filename := readLine(console)
		if err := loader.LoadDataMemory(filename, mem); err != nil {
			fmt.Fprintf(os.Stderr, "apexsim: %v\n", err)
			os.Exit(1)
		}
	}

	p := pipeline.NewPipeline(program, regs, mem)
	p.SetPC(cfg.StartPC)

	var traceWriter io.Writer
	if cfg.Trace {
		traceWriter = os.Stdout
	}
	driver := core.NewDriver(p, traceWriter)

	if askYesNo(console, "simulate? (y/n) ") {
		fmt.Print("number of cycles (0 = indefinite): ")
		n, err := strconv.ParseUint(readLine(console), 10, 64)
		if err != nil {
			n = 0
		}
		if n == 0 {
			driver.Run(core.Forever())
		} else {
			driver.Run(core.Cycles(n))
		}
	} else {
		runSingleStep(console, driver)
	}

	stats := p.Stats()
	fmt.Printf("APEX_CPU: Simulation Complete, cycles = %d, instructions completed = %d\n",
		stats.Cycles, stats.InsnsRetired)
	fmt.Printf("APEX_CPU: pc = %d\n", p.PC())

	core.DumpState(os.Stdout, regs, mem, 50)
}

// runSingleStep advances one cycle per keystroke, matching the original
// reference's single-step mode: any key advances, "q" stops.
func runSingleStep(console *bufio.Reader, driver *core.Driver) {
	for {
		fmt.Print("press Enter to step, q to quit: ")
		key := readLine(console)
		if key == "q" {
			return
		}
		if !driver.Step() {
			return
		}
	}
}

func askYesNo(console *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	answer := strings.ToLower(readLine(console))
	return answer == "y" || answer == "yes"
}

func readLine(console *bufio.Reader) string {
	line, _ := console.ReadString('\n')
	return strings.TrimSpace(line)
}
