package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"namescreen/internal/archive"
	"namescreen/internal/pipeline"
	"namescreen/internal/progress"
)

var (
	referenceDir string
	outputRoot   string
	packArchive  bool
)

// screenCmd runs one screening batch from the command line.
var screenCmd = &cobra.Command{
	Use:   "screen [subjects.xlsx]",
	Short: "Screen a subject list and capture evidence",
	Long: `Screens every subject in the workbook against the reference corpus,
captures one screenshot per subject, and writes the report into a fresh
timestamped run directory under the output root.`,
	Args: cobra.ExactArgs(1),
	RunE: runScreen,
}

func init() {
	screenCmd.Flags().StringVar(&referenceDir, "reference-dir", "", "reference corpus directory (overrides config)")
	screenCmd.Flags().StringVar(&outputRoot, "output-root", "", "run output root (overrides config)")
	screenCmd.Flags().BoolVar(&packArchive, "archive", false, "zip the run directory after completion")
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reporter := progress.NewReporter(64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range reporter.Events() {
			if ev.Done {
				continue
			}
			fmt.Printf("[%d/%d] %s: %s\n", ev.Current, ev.Total, ev.Subject, ev.Status)
		}
	}()

	p := pipeline.New(cfg, logger)
	summary, err := p.Run(context.Background(), args[0], reporter)
	wg.Wait()
	if err != nil {
		return err
	}

	zipPath := ""
	if packArchive {
		zipPath, err = archive.Pack(summary.RunDir)
		if err != nil {
			return err
		}
	}

	printSummary(summary, zipPath)
	return nil
}

func printSummary(s *pipeline.Summary, zipPath string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Subjects", s.Subjects},
		{"Matched", s.Matched},
		{"Capture failures", s.CaptureFailures},
		{"Report", s.ReportPath},
		{"Run directory", s.RunDir},
	})
	if zipPath != "" {
		t.AppendRow(table.Row{"Archive", zipPath})
	}
	t.Render()
}
