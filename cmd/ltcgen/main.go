// Command ltcgen is the CLI front end: generate LTC audio to a WAVE
// file or a live PortAudio output, list PortAudio devices, or decode a
// WAVE file back to timecodes. Not part of the core per spec.md §1.
package main

import (
	"fmt"
	"os"
)

// Exit codes, per spec.md §6.
const (
	exitSuccess  = 0
	exitArgError = 1
	exitHostFail = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitArgError
	}

	switch args[0] {
	case "generate":
		return runGenerate(args[1:])
	case "decode":
		return runDecode(args[1:])
	case "devices":
		return runDevices(args[1:])
	case "-h", "--help", "help":
		usage()
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "ltcgen: unknown subcommand %q\n", args[0])
		usage()
		return exitArgError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: ltcgen <generate|decode|devices> [flags]")
	fmt.Fprintln(os.Stderr, "  generate  render LTC to a WAVE file or a live audio output")
	fmt.Fprintln(os.Stderr, "  decode    read a WAVE file and print recovered timecodes")
	fmt.Fprintln(os.Stderr, "  devices   list available PortAudio devices")
}
