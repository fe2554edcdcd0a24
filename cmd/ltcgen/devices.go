package main

import (
	"fmt"
	"os"

	"github.com/doismellburning/ltcgen/audiohost"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"
)

func runDevices(args []string) int {
	fs := pflag.NewFlagSet("devices", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitArgError
	}

	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen devices: %v\n", err)
		return exitHostFail
	}
	defer portaudio.Terminate()

	devices, err := audiohost.ListDevices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen devices: %v\n", err)
		return exitHostFail
	}

	fmt.Printf("%-5s %-40s %8s %8s\n", "INDEX", "NAME", "OUT", "IN")
	for _, d := range devices {
		fmt.Printf("%-5d %-40s %8d %8d\n", d.Index, d.Name, d.MaxOutputs, d.MaxInputs)
	}
	return exitSuccess
}
