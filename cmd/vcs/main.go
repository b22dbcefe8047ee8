// cmd/vcs/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vcs/internal/config"
	"vcs/internal/errors"
	"vcs/internal/logging"
	"vcs/internal/repository"
	"vcs/internal/watch"
)

var logger *logging.Logger

var rootCmd = &cobra.Command{
	Use:   "vcs",
	Short: "vcs is a minimal local version control system",
	Long: `vcs snapshots individual files into a content-addressed object store
and links them into a linear commit history under .vcs/.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.NoColor {
			color.NoColor = true
		}

		logger, err = logging.NewLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
}

func init() {
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a repository in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			report, err := repository.Initialize(osfs.New(cwd))
			if err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}

			for _, path := range report.Created {
				fmt.Println("Created", path)
			}
			for _, path := range report.Existing {
				fmt.Println(path, "already exists")
			}
			if len(report.Created) > 0 {
				fmt.Println("Initialized empty repository in", cwd)
			} else {
				fmt.Println("Repository already initialized in", cwd)
			}
			return nil
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add [paths...]",
		Short: "Stage file contents for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, root, err := openRepo()
			if err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			for _, arg := range args {
				// Paths are recorded as given when running at the root;
				// from a subdirectory they are rewritten root-relative.
				path := arg
				if cwd != root {
					rel, err := filepath.Rel(root, filepath.Join(cwd, arg))
					if err != nil {
						return fmt.Errorf("resolving %s: %w", arg, err)
					}
					path = rel
				}

				entry, err := repo.Add(path)
				if err != nil {
					return fmt.Errorf("adding %s: %w", arg, err)
				}
				fmt.Printf("Added %s to index (%s)\n", entry.Path, entry.Hash[:8])
			}
			return nil
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit [message]",
		Short: "Record the staged files as a new commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}

			hash, err := repo.Commit(args[0])
			if err != nil {
				return fmt.Errorf("committing: %w", err)
			}

			fmt.Println("Committed:", hash)
			return nil
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show the commit history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}

			entries, err := repo.Log()
			for _, e := range entries {
				printLogEntry(e)
			}
			if err != nil {
				if errors.IsNotFound(err) {
					yellow := color.New(color.FgYellow).SprintFunc()
					fmt.Printf("\n%s %v\n", yellow("history incomplete:"), err)
					return nil
				}
				return fmt.Errorf("walking history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No commits yet")
			}
			return nil
		},
	}

	var diffCmd = &cobra.Command{
		Use:   "diff [commit]",
		Short: "Show a commit's file contents next to its parent's",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}

			report, err := repo.Diff(args[0])
			if err != nil {
				if errors.IsNotFound(err) {
					yellow := color.New(color.FgYellow).SprintFunc()
					fmt.Println(yellow(err.Error()))
					return nil
				}
				return fmt.Errorf("diffing %s: %w", args[0], err)
			}

			printDiffReport(report)
			return nil
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show staged files and their working-tree state",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}

			status, err := repo.Status()
			if err != nil {
				return fmt.Errorf("getting status: %w", err)
			}

			if len(status) == 0 {
				fmt.Println("Nothing staged (staging index is empty)")
				return nil
			}

			var staged, modified, missing []repository.StatusEntry
			for _, s := range status {
				switch s.State {
				case repository.StateStaged:
					staged = append(staged, s)
				case repository.StateModified:
					modified = append(modified, s)
				case repository.StateMissing:
					missing = append(missing, s)
				}
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			if len(staged) > 0 {
				fmt.Println("Staged for commit:")
				fmt.Println("  (use \"vcs commit <message>\" to record them)")
				for _, s := range staged {
					fmt.Printf("\t%s %s\n", green("✓"), s.Entry.Path)
				}
				fmt.Println()
			}

			if len(modified) > 0 {
				fmt.Println("Modified since staging:")
				fmt.Println("  (use \"vcs add <file>...\" to stage the new content)")
				for _, s := range modified {
					fmt.Printf("\t%s %s\n", yellow("M"), s.Entry.Path)
				}
				fmt.Println()
			}

			if len(missing) > 0 {
				fmt.Println("Missing from working tree:")
				for _, s := range missing {
					fmt.Printf("\t%s %s\n", red("D"), s.Entry.Path)
				}
				fmt.Println()
			}

			return nil
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Watch the working tree and stage files as they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, root, err := openRepo()
			if err != nil {
				return err
			}

			stager, err := watch.NewAutoStager(root, repo, repoLogger(root))
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer stager.Close()

			fmt.Println("Watching", root, "(press Ctrl-C to stop)")

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			fmt.Println("\nStopped watching")
			return nil
		},
	}

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check every stored object against its hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}

			result, err := repo.Verify()
			if err != nil {
				return fmt.Errorf("verifying objects: %w", err)
			}

			if len(result.Mismatched) > 0 {
				red := color.New(color.FgRed).SprintFunc()
				for _, name := range result.Mismatched {
					fmt.Printf("%s %s\n", red("corrupt:"), name)
				}
				return fmt.Errorf("%d of %d objects corrupt", len(result.Mismatched), result.Checked)
			}

			fmt.Printf("All %d objects verified\n", result.Checked)
			return nil
		},
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(verifyCmd)
}

// openRepo locates the repository root above the current directory and
// opens it, returning the handle and the root path.
func openRepo() (*repository.Repository, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting current directory: %w", err)
	}

	root, err := repository.FindRoot(cwd)
	if err != nil {
		return nil, "", fmt.Errorf("%w (run \"vcs init\" first)", err)
	}

	repo, err := repository.New(osfs.New(root), repoLogger(root))
	if err != nil {
		return nil, "", fmt.Errorf("opening repository: %w", err)
	}
	return repo, root, nil
}

func repoLogger(root string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.WithRepo(root)
}

func printLogEntry(e repository.LogEntry) {
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\ncommit %s\n", yellow(e.Hash))
	fmt.Println("Date:  ", e.Commit.Timestamp)
	fmt.Printf("\n    %s\n", e.Commit.Message)
	for _, f := range e.Commit.Files {
		fmt.Printf("    %s %s\n", f.Hash[:8], f.Path)
	}
}

func printDiffReport(report *repository.DiffReport) {
	cyan := color.New(color.FgCyan).SprintFunc()
	current := color.New(color.FgGreen)
	previous := color.New(color.FgRed)

	fmt.Printf("commit %s\n", report.Hash)
	fmt.Println("Date:  ", report.Commit.Timestamp)
	fmt.Printf("\n    %s\n", report.Commit.Message)

	if len(report.Files) == 0 {
		fmt.Println("\nNo files in this commit")
		return
	}

	for _, fd := range report.Files {
		fmt.Printf("\n%s %s\n", cyan("File:"), fd.Path)
		printContent("current", current, fd.Content)

		switch {
		case report.FirstCommit:
			fmt.Println("  (first commit)")
		case report.ParentMissing:
			fmt.Println("  (parent commit not found)")
		case fd.InParent:
			printContent("previous", previous, fd.Parent)
		}
	}
}

func printContent(label string, painted *color.Color, content []byte) {
	fmt.Printf("  %s:\n", label)
	if len(content) == 0 {
		fmt.Println("    (empty)")
		return
	}
	for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
		painted.Printf("    %s\n", line)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
