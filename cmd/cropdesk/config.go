package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/cropdesk/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	output string
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "file written by save (default: the loaded config or "+config.DefaultPath()+")")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	case "path":
		fmt.Fprintln(c.stdout, c.path())
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) runPrint() error {
	fmt.Fprint(c.stdout, c.root.config.String())
	return nil
}

// path picks the save target: -output, then the file the loader would
// read, then the default location.
func (c *configCmd) path() string {
	if c.output != "" {
		return c.output
	}
	if p := config.NewLoader(version, configPathOverride).GetConfigPath(); p != "" {
		return p
	}
	return config.DefaultPath()
}

func (c *configCmd) runSave() error {
	path := c.path()
	if err := config.Save(c.root.config, path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
