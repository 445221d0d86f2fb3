package main

import (
	"context"
	"fmt"
	"os"

	"aftermarket-report/internal/cli"
)

// @title After Market Report API
// @version 1.0
// @description Sales history of a client across the stores of a plant.
// @BasePath /api/v1
func main() {
	if err := cli.Serve(context.Background(), ".env", ""); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
