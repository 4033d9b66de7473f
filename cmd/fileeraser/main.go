package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fileeraser/internal/app"
	"fileeraser/internal/config"
	"fileeraser/internal/erase"
	"fileeraser/internal/logging"
	"fileeraser/internal/reporting"
	"fileeraser/internal/security"
	"fileeraser/internal/system"
	"fileeraser/internal/tui"
)

const (
	Version = "1.0.0"
	AppName = "File Eraser"
)

var (
	cfg        *config.Config
	logger     *logging.Logger
	verbose    bool
	configPath string
	profile    string

	passes     int
	cryptoRand bool
	plain      bool
	skipPrompt bool
)

var rootCmd = &cobra.Command{
	Use:     "fileeraser",
	Short:   "File Eraser - secure destruction of single files",
	Long:    "Overwrites a file with random data across multiple passes, then removes it",
	Version: Version,
}

var eraseCmd = &cobra.Command{
	Use:   "erase [file]",
	Short: "Securely erase a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runErase,
}

var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show volume information for a path",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Erase profile (quick/standard/paranoid/gentle)")

	eraseCmd.Flags().IntVarP(&passes, "passes", "p", 0, "Number of overwrite passes (overrides config)")
	eraseCmd.Flags().BoolVar(&cryptoRand, "crypto-rand", false, "Use the OS CSPRNG for overwrite data")
	eraseCmd.Flags().BoolVar(&plain, "plain", false, "Plain progress output instead of the TUI")
	eraseCmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(eraseCmd, infoCmd)
}

func setup() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if profile != "" {
		if err := config.ApplyProfile(cfg, profile); err != nil {
			return err
		}
	}

	logger, err = logging.New(cfg, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

func runErase(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}
	defer logger.Close()

	if passes > 0 {
		cfg.Erase.Passes = passes
	}
	if cryptoRand {
		cfg.Erase.RNG = "crypto"
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	var path string
	var err error
	if len(args) == 1 {
		path = args[0]
	} else {
		path, err = app.PickFile(os.Stdin, os.Stdout)
		if err != nil {
			// Selection failure is non-fatal by design: report and
			// leave without starting a job.
			fmt.Println(err)
			return nil
		}
	}

	if err := security.CheckTarget(path, cfg); err != nil {
		return err
	}

	size, err := system.FileSize(path)
	if err != nil {
		return err
	}

	if vol, err := system.GetVolumeInfo(filepath.Dir(path)); err == nil {
		logger.Log("DEBUG", "Target volume", "path", vol.Path,
			"free_gb", float64(vol.FreeSize)/(1024*1024*1024))
	}

	if !skipPrompt {
		fmt.Printf("This will permanently destroy %s (%d bytes, %d passes). Continue? [y/N]: ",
			path, size, cfg.Erase.Passes)
		var answer string
		fmt.Scanln(&answer)
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	engine, err := erase.NewEngine(cfg, logger)
	if err != nil {
		return err
	}
	coordinator := erase.NewCoordinator(engine, cfg, logger)

	start := time.Now()
	stream, ok := coordinator.Start(path)
	if !ok {
		return fmt.Errorf("another erase is already in progress")
	}

	var success, finished bool
	if plain {
		success, finished = consumePlain(stream)
	} else {
		model, err := tea.NewProgram(tui.New(path, stream)).Run()
		if err != nil {
			stream.Close()
			return fmt.Errorf("progress display failed: %w", err)
		}
		m := model.(tui.Model)
		success, finished = m.Success(), m.Done()
	}

	if cfg.Reporting.Enabled {
		report := &reporting.EraseReport{
			JobID:     uuid.NewString(),
			Path:      path,
			Passes:    cfg.Erase.Passes,
			Bytes:     size,
			StartTime: start,
			EndTime:   time.Now(),
			Success:   success,
		}
		report.Finalize()
		if reportPath, err := reporting.Write(cfg.Reporting.LocalPath, report); err != nil {
			logger.Log("WARN", "Failed to write erase report", "error", err.Error())
		} else {
			logger.Log("INFO", "Erase report written", "report", reportPath)
		}
	}

	switch {
	case !finished:
		return fmt.Errorf("erase abandoned before completion")
	case !success:
		return fmt.Errorf("erase failed, see log for details")
	}

	fmt.Printf("Securely erased %s\n", path)
	return nil
}

// consumePlain drains the stream without the TUI, printing coarse
// percentage updates.
func consumePlain(stream *erase.Stream) (success, finished bool) {
	for {
		e, ok := stream.Next()
		if !ok {
			return success, finished
		}

		switch e.Type {
		case erase.EventUpdated:
			fmt.Printf("\rProgress: %5.1f%%", e.Fraction)
		case erase.EventFinished:
			fmt.Println()
			return e.Success, true
		}
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}
	defer logger.Close()

	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	vol, err := system.GetVolumeInfo(path)
	if err != nil {
		return err
	}

	const gb = 1024 * 1024 * 1024
	fmt.Printf("Volume for %s\n", vol.Path)
	fmt.Printf("  Total: %8.1f GB\n", float64(vol.TotalSize)/gb)
	fmt.Printf("  Used:  %8.1f GB\n", float64(vol.UsedSize)/gb)
	fmt.Printf("  Free:  %8.1f GB\n", float64(vol.FreeSize)/gb)
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		// A missing .env is fine, variables may be set directly.
		if !os.IsNotExist(err) {
			fmt.Printf("[WARN] Failed to load .env: %v\n", err)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
