package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed examples
var examples embed.FS

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write an example config, overlay, registry and profile",
	Long:  "Copies the bundled example files into dir (default roles-kit). Existing files are kept unless --force is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	target := filepath.Dir(defaultConfigPath)
	if len(args) == 1 {
		target = args[0]
	}
	written, err := writeExamples(target, initForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		return err
	}
	for _, path := range written {
		fmt.Printf("wrote %s\n", path)
	}
	fmt.Printf("Initialized roles-kit at %s\n", target)
	return nil
}

// writeExamples copies the embedded examples into target and returns the
// files it wrote.
func writeExamples(target string, force bool) ([]string, error) {
	var written []string
	err := fs.WalkDir(examples, "examples", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("examples", path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		if !force {
			if _, err := os.Stat(dest); err == nil {
				return nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		data, err := examples.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
		written = append(written, dest)
		return nil
	})
	return written, err
}
