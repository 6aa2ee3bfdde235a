// Command revtext is a CLI front end for the revtext library: diffing two
// files into patch text, applying a patch file, and printing the effective
// tunables config. It has no snapshot-repository commands.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kalafut/revtext"
	"github.com/kalafut/revtext/rtconfig"
)

var CLI struct {
	Diff struct {
		BeforeFile *os.File `arg help:"Before file"`
		AfterFile  *os.File `arg help:"After file"`
	} `cmd help:"Print the unified-diff patch text turning 'before' into 'after'."`

	Patch struct {
		BeforeFile *os.File `arg help:"Before file"`
		PatchFile  *os.File `arg help:"Patch file, in revtext's patch text format"`
	} `cmd help:"Apply a patch file to a before file."`

	Config struct {
		Project string `name:"project" help:"Project config path (.revtext.json by default)"`
	} `cmd help:"Print the effective tunables config."`
}

func main() {
	ctx := kong.Parse(&CLI)
	var err error
	switch ctx.Command() {
	case "diff <before-file> <after-file>":
		err = runDiff()
	case "patch <before-file> <patch-file>":
		err = runPatch()
	case "config":
		err = runConfig()
	default:
		err = fmt.Errorf("unrecognized command: %s", ctx.Command())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPatchEngine(t rtconfig.Tunables) *revtext.PatchEngine {
	pe := revtext.NewPatchEngine()
	pe.Diff.Timeout = t.DiffTimeout
	pe.Diff.EditCost = t.DiffEditCost
	pe.Match.Threshold = t.MatchThreshold
	pe.Match.Distance = t.MatchDistance
	pe.Match.MaxBits = t.MatchMaxBits
	pe.DeleteThreshold = t.PatchDeleteThreshold
	pe.Margin = t.PatchMargin
	return pe
}

func loadTunables() (rtconfig.Tunables, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return rtconfig.Tunables{}, err
	}
	cfg, _, err := rtconfig.Load(workDir, CLI.Config.Project, rtconfig.Tunables{}, os.Environ())
	return cfg, err
}

func runDiff() error {
	before, err := readAllString(CLI.Diff.BeforeFile)
	if err != nil {
		return err
	}
	after, err := readAllString(CLI.Diff.AfterFile)
	if err != nil {
		return err
	}

	tunables, err := loadTunables()
	if err != nil {
		return err
	}
	pe := newPatchEngine(tunables)

	patches, err := pe.Make(before, after)
	if err != nil {
		return fmt.Errorf("making patch: %w", err)
	}
	fmt.Print(revtext.PatchToText(patches))
	return nil
}

func runPatch() error {
	before, err := readAllString(CLI.Patch.BeforeFile)
	if err != nil {
		return err
	}
	patchText, err := readAllString(CLI.Patch.PatchFile)
	if err != nil {
		return err
	}

	patches, err := revtext.PatchFromText(patchText)
	if err != nil {
		return fmt.Errorf("parsing patch file: %w", err)
	}

	tunables, err := loadTunables()
	if err != nil {
		return err
	}
	pe := newPatchEngine(tunables)

	result, applied, err := pe.Apply(patches, before)
	if err != nil {
		return fmt.Errorf("applying patch: %w", err)
	}
	for i, ok := range applied {
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: hunk %d did not apply cleanly\n", i)
		}
	}
	fmt.Print(result)
	return nil
}

func runConfig() error {
	tunables, err := loadTunables()
	if err != nil {
		return err
	}
	out, err := rtconfig.FormatTunables(tunables)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func readAllString(f *os.File) (string, error) {
	data := make([]byte, 0, 4096)
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		data = append(data, buf[:n]...)
		if err != nil {
			break
		}
	}
	return string(data), nil
}
