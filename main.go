// ABOUTME: Entry point for the fieldreport CLI
// ABOUTME: Terminal client for submitting photo reports and reviewing report history

package main

import (
	"fmt"
	"os"

	"github.com/markalston/fieldreport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
