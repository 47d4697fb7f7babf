package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mind-engage/corector/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	root := &cobra.Command{
		Use:          "corectorctl",
		Short:        "Inspect OCR records, grading statistics and the session store",
		SilenceUsage: true,
	}
	root.AddCommand(
		recordsCmd(&cfg),
		statsCmd(&cfg),
		migrateCmd(&cfg),
		eventsCmd(&cfg),
		hashPasswordCmd(),
	)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
