package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dtcc-platform/dtcc-utils/internal/config"
	"github.com/dtcc-platform/dtcc-utils/internal/git"
	"github.com/dtcc-platform/dtcc-utils/internal/release"
	"github.com/dtcc-platform/dtcc-utils/internal/ui"
	"github.com/dtcc-platform/dtcc-utils/internal/workspace"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dtcc-release <repository> <version>",
		Short:   "Release a repository: bump, tag and push develop, then merge into main",
		Version: version,
		Args:    cobra.ExactArgs(2),
		RunE:    runRelease,
	}

	cmd.Flags().String("org", "", "Organization on the remote host")
	cmd.Flags().String("remote-base", "", "Remote URL prefix (or a local path)")
	cmd.Flags().String("develop-branch", "", "Development branch name")
	cmd.Flags().String("main-branch", "", "Stable branch name")
	cmd.Flags().String("config", config.DefaultFile, "Path to the release config file")
	cmd.Flags().Bool("dry-run", false, "Print every git command instead of executing it")
	cmd.Flags().Bool("force", false, "Re-create tags that already exist")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")

	return cmd
}

func runRelease(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if !git.IsGitInstalled() {
		return fmt.Errorf("git not found on PATH")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	desc := release.Descriptor{
		Repository: args[0],
		Version:    args[1],
		Org:        cfg.Org,
		DryRun:     dryRun,
		Force:      force,
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	ws, err := workspace.Create()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Remove() }()

	runner := &git.Runner{DryRun: dryRun, Out: cmd.OutOrStdout()}
	engine := release.New(desc, cfg, runner, ws.RepoDir(desc.Repository), logger)

	if err := engine.Run(); err != nil {
		return fmt.Errorf("release failed (reached %s): %w", engine.State(), err)
	}

	if !dryRun {
		printPushedRefs(cmd, engine.PushedRefs())
	}
	return nil
}

// applyFlagOverrides copies explicitly-set flags over the file config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("org"); v != "" {
		cfg.Org = v
	}
	if v, _ := cmd.Flags().GetString("remote-base"); v != "" {
		cfg.RemoteBase = v
	}
	if v, _ := cmd.Flags().GetString("develop-branch"); v != "" {
		cfg.DevelopBranch = v
	}
	if v, _ := cmd.Flags().GetString("main-branch"); v != "" {
		cfg.MainBranch = v
	}
}

func printPushedRefs(cmd *cobra.Command, refs []release.Ref) {
	summary := ui.NewSummary("REF", "TYPE")
	for _, r := range refs {
		summary.Add(r.Name, r.Kind)
	}
	_ = summary.Render(cmd.OutOrStdout())
}
