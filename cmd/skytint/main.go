// Skytint - Readable colours and festival themes for travel cards
//
// Skytint picks legible text colours for coloured backgrounds and finds the
// city festivals that overlap a traveller's selected dates.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"github.com/jmylchreest/skytint/internal/cli"
)

func main() {
	cli.Execute()
}
