// Command moodmuse is the MoodMuse client and development backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/justestif/moodmuse/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
