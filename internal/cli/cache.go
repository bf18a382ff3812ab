package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand groups the render-cache subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered-artifact cache",
	}
	cmd.AddCommand(
		cacheSubcommand("clear", "Delete all cached Graphviz renders", runCacheClear),
		cacheSubcommand("info", "Show cache location, entry count and size", runCacheInfo),
		cacheSubcommand("path", "Print the cache directory path", func(cmd *cobra.Command, dir string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		}),
	)
	return cmd
}

func cacheSubcommand(use, short string, run func(*cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			return run(cmd, dir)
		},
	}
}

func runCacheClear(_ *cobra.Command, dir string) error {
	count, err := clearDir(dir)
	if err != nil {
		return err
	}
	if count == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Cleared %d cached entries", count)
	printDetail("Directory: %s", dir)
	return nil
}

func runCacheInfo(_ *cobra.Command, dir string) error {
	u, err := scanDir(dir)
	if err != nil {
		return err
	}
	printKeyValue("directory", dir)
	printKeyValue("entries", fmt.Sprint(len(u.files)))
	printKeyValue("size", formatBytes(u.bytes))
	return nil
}

// dirUsage is what scanDir found below a cache directory.
type dirUsage struct {
	files []string
	dirs  []string // shard directories, parents before children
	bytes int64
}

// scanDir walks dir without descending into unreadable entries. A missing
// dir is empty.
func scanDir(dir string) (dirUsage, error) {
	var u dirUsage
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return u, nil
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if d.IsDir() {
			u.dirs = append(u.dirs, path)
			return nil
		}
		u.files = append(u.files, path)
		if info, err := d.Info(); err == nil {
			u.bytes += info.Size()
		}
		return nil
	})
	return u, err
}

// clearDir removes every file below dir and then the emptied shard
// directories. dir itself is kept.
func clearDir(dir string) (int, error) {
	u, err := scanDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, f := range u.files {
		if os.Remove(f) == nil {
			count++
		}
	}
	for i := len(u.dirs) - 1; i >= 0; i-- {
		_ = os.Remove(u.dirs[i])
	}
	return count, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
