package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebench/pkg/core"
	"github.com/aretw0/notebench/pkg/harness"
)

var (
	noteTarget  string
	noteTitle   string
	noteContent string
	noteJSON    bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Create, list and read notes on a running backend",
}

func noteClient(cmd *cobra.Command) *harness.NotesClient {
	target := cfg.BenchSecond
	override(cmd, "target", &target, noteTarget)
	return harness.NewNotesClient(target, nil)
}

func printNote(n core.Note) error {
	if noteJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(n)
	}
	fmt.Printf("%s - %s\n%s\n", n.ID, n.Title, n.Content)
	return nil
}

var noteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := noteClient(cmd).Create(context.Background(), core.NoteInput{Title: noteTitle, Content: noteContent})
		if err != nil {
			return err
		}
		return printNote(n)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := noteClient(cmd).List(context.Background())
		if err != nil {
			return err
		}

		if noteJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}
		for _, n := range notes {
			fmt.Printf("%s - %s\n", n.ID, n.Title)
		}
		return nil
	},
}

var noteGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Read a note by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := noteClient(cmd).Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printNote(n)
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteCreateCmd, noteListCmd, noteGetCmd)

	noteCmd.PersistentFlags().StringVarP(&noteTarget, "target", "t", "", "Base URL of the backend API (default: BENCH_SECOND)")
	noteCmd.PersistentFlags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
	noteCreateCmd.Flags().StringVar(&noteTitle, "title", "", "Note title")
	noteCreateCmd.Flags().StringVar(&noteContent, "content", "", "Note content")
}
