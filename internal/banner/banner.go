package banner

import (
	"fmt"
	"strings"
)

const logo = `
======================================================================
  ____      _ _       _
 / ___|__ _| | |_   _(_) _____      __
| |   / _` + "`" + ` | | \ \ / / |/ _ \ \ /\ / /
| |__| (_| | | |\ V /| |  __/\ V  V /
 \____\__,_|_|_| \_/ |_|\___| \_/\_/
----------------------------------------------------------------------`

const footer = `======================================================================`

// ConfigLine represents a single configuration line to display
type ConfigLine struct {
	Label string
	Value string
}

// Print displays the startup banner with the service name and configuration
func Print(serviceName string, config []ConfigLine) {
	fmt.Println(logo)
	fmt.Printf("%s\n", serviceName)

	maxLen := 0
	for _, c := range config {
		if len(c.Label) > maxLen {
			maxLen = len(c.Label)
		}
	}

	for _, c := range config {
		padding := strings.Repeat(" ", maxLen-len(c.Label))
		fmt.Printf("  %s%s : %s\n", c.Label, padding, c.Value)
	}

	fmt.Println()
	fmt.Println("Ready.")
	fmt.Println(footer)
	fmt.Println()
}
