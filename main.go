package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/abhisek/seatutor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
