package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/config"
	"github.com/rentbook-dev/rentbook/internal/gitops"
	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/rental"
	"github.com/rentbook-dev/rentbook/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new rentbook project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "agency name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string, useGit bool) error {
	ctx := cmd.Context()

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already contains a rentbook project", dir)
	}

	dirs := []string{
		"data",
		"logs",
		"documents",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	cfg.Git.AutoCommit = useGit
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Secrets and generated output stay out of version control.
	gitignore := ".env\n*.db\ndocuments/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Seed the agency profile of the default account.
	backend, err := store.OpenFile(dir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer backend.Close()
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	svc := rental.NewService(backend.Account(cfg.Agency.Account), log)
	if _, err := svc.SaveAgency(ctx, model.Agency{Name: name}); err != nil {
		return fmt.Errorf("saving agency profile: %w", err)
	}

	out := cmd.OutOrStdout()
	if !useGit {
		fmt.Fprintf(out, "Initialized rentbook project at %s\n", dir)
		return nil
	}

	repo := gitops.New(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err := repo.Init(ctx); err != nil {
		return err
	}
	hash, err := repo.Commit(ctx, "init: Initialize "+name)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized rentbook project at %s (%s)\n", dir, hash)
	return nil
}
