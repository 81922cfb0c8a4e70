package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smartspeak/internal/repository"
	"smartspeak/internal/service"
)

var (
	exportOutput string
	importClear  bool
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a JSON file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON backup",
	Long: `Import a JSON backup produced by "smartspeakctl export" or the admin console.

Without --clear the backup is merged into the existing data.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Repair every student's level and badges and backfill weekly XP",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var ensureAdminCmd = &cobra.Command{
	Use:   "ensure-admin",
	Short: "Create the default admin if none exists",
	Args:  cobra.NoArgs,
	RunE:  runEnsureAdmin,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: smartspeak_backup_YYYYMMDD_HHMMSS.json)")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "Clear existing data before import (destructive)")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the confirmation prompt for --clear")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	outputPath := exportOutput
	if outputPath == "" {
		outputPath = fmt.Sprintf("smartspeak_backup_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	backup, err := service.NewBackupService(e.db, e.log).Export(outputPath)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d students and %d teachers to %s\n",
		len(backup.Students), len(backup.Teachers), outputPath)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	if importClear && !importYes {
		fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
			return nil
		}
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := service.NewBackupService(e.db, e.log).Import(inputPath, importClear); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Import complete")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	gamification := service.NewGamificationService(repository.NewUserRepository(e.db), e.log)
	result := gamification.MigrateLevelsAndBadges()
	backfilled, err := gamification.BackfillWeeklyXP()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d students (%d errors), backfilled weekly XP for %d\n",
		result.Migrated, result.Errors, backfilled)
	return nil
}

func runEnsureAdmin(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	email, err := service.NewEmailService(cmd.Context(), service.EmailConfig{}, e.log)
	if err != nil {
		return err
	}
	userRepo := repository.NewUserRepository(e.db)
	auth := service.NewAuthService(
		userRepo,
		repository.NewTeacherRepository(e.db),
		repository.NewAdminRepository(e.db),
		service.NewGamificationService(userRepo, e.log),
		email,
		e.log,
	)

	created, rehashed, err := auth.EnsureDefaultAdmin(e.cfg.DefaultAdminUsername, e.cfg.DefaultAdminPassword)
	if err != nil {
		return err
	}
	switch {
	case created:
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %q\n", e.cfg.DefaultAdminUsername)
	case rehashed > 0:
		fmt.Fprintf(cmd.OutOrStdout(), "Upgraded %d admin passwords\n", rehashed)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Admin already present")
	}
	return nil
}
