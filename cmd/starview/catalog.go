package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Faultbox/starview/internal/catalog"
)

var catalogMenu bool

var catalogCmd = &cobra.Command{
	Use:   "catalog [file]",
	Short: "Print the bodies of a catalog with their placed positions",
	Long: `Load a catalog the way the viewer does and print the body hierarchy with
world positions. Without a file the configured catalog is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogMenu, "menu", false, "Print bodies in selection-menu order instead of as a tree")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path := cfg.Catalog.Path
	if len(args) == 1 {
		path = args[0]
	}

	c, err := catalog.Load(path, catalog.Options{Seed: cfg.Catalog.Seed, Jitter: cfg.Catalog.Jitter})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Catalog: %s (%d bodies)\n\n", path, c.Len())
	if catalogMenu {
		for i, o := range c.Menu() {
			fmt.Fprintf(out, "%3d. %s\n", i+1, describe(o))
		}
		return nil
	}
	printTree(out, c)
	return nil
}

// printTree writes roots in document order with their satellites indented
// below them.
func printTree(w io.Writer, c *catalog.Catalog) {
	var walk func(o *catalog.Object, depth int)
	walk = func(o *catalog.Object, depth int) {
		fmt.Fprintf(w, "%*s%s\n", depth*2, "", describe(o))
		for _, child := range c.Children(o.Name) {
			walk(child, depth+1)
		}
	}
	for _, root := range c.Roots() {
		walk(root, 0)
	}
}

func describe(o *catalog.Object) string {
	kind := ""
	switch {
	case o.Star:
		kind = " [star]"
	case o.Placeholder:
		kind = " [placeholder]"
	}
	return fmt.Sprintf("%s%s at (%.2f, %.2f, %.2f) size %.2f",
		o.Name, kind, o.World.X(), o.World.Y(), o.World.Z(), o.Size)
}
