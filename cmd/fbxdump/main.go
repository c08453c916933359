// Command fbxdump inspects FBX binary files: it either walks the raw node
// tree or runs the typed 7.4 loader and prints a document summary.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lo48576/fbxcel-legacy/fbx7400/object"
	"github.com/lo48576/fbxcel-legacy/node"
	"github.com/lo48576/fbxcel-legacy/pull"
)

type options struct {
	tree     bool
	warnings bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("fbxdump: ")

	var opts options
	root := &cobra.Command{
		Use:   "fbxdump FILE",
		Short: "Inspect an FBX binary file",
		Long: "fbxdump parses an FBX binary file (versions 7400-7599) and prints either\n" +
			"the raw node tree (--tree) or a typed document summary (default).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(args[0], opts)
		},
	}
	flags := root.Flags()
	flags.BoolVar(&opts.tree, "tree", false, "dump the raw node tree instead of the typed summary")
	flags.BoolVarP(&opts.warnings, "warnings", "w", false, "print parser warnings after the dump")
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(path string, opts options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p := pull.NewSeekable(f)
	if opts.tree {
		err = dumpTree(p)
	} else {
		err = dumpTyped(p)
	}
	if err != nil {
		return err
	}

	if opts.warnings {
		for _, w := range p.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
	return nil
}

func dumpTree(p *pull.Parser) error {
	if _, err := p.NextEvent(); err != nil { // StartFbx
		return err
	}
	fmt.Printf("FBX version %d\n", p.FBXVersion())

	nodes, footer, err := node.Load(p.Subtree())
	if err != nil {
		return err
	}
	for i := range nodes {
		printNode(&nodes[i], 0)
	}
	if footer != nil {
		fmt.Printf("footer version %d\n", footer.Version)
	}
	return nil
}

func printNode(n *node.Node, depth int) {
	fmt.Printf("%*s%s (%d attributes)\n", depth*2, "", n.Name, len(n.Attributes))
	for i := range n.Children {
		printNode(&n.Children[i], depth+1)
	}
}

func dumpTyped(p *pull.Parser) error {
	doc, objects, err := object.Load(p)
	if err != nil {
		return err
	}

	fmt.Printf("FBX version %d\n", doc.Version)
	fmt.Printf("creator: %s\n", doc.Creator)
	fmt.Printf("created: %s\n", doc.CreationTime)
	fmt.Printf("object types defined: %d\n", len(doc.Definitions.ObjectTypes))

	for _, row := range []struct {
		kind string
		n    int
	}{
		{"models", len(objects.Models)},
		{"nulls", len(objects.Nulls)},
		{"skeletons", len(objects.Skeletons)},
		{"skins", len(objects.Skins)},
		{"clusters", len(objects.Clusters)},
		{"blend shapes", len(objects.BlendShapes)},
		{"blend shape channels", len(objects.BlendShapeChannels)},
		{"shapes", len(objects.Shapes)},
		{"materials", len(objects.Materials)},
		{"textures", len(objects.Textures)},
		{"videos", len(objects.Videos)},
		{"poses", len(objects.Poses)},
		{"display layers", len(objects.DisplayLayers)},
		{"animation curve nodes", len(objects.AnimationCurveNodes)},
		{"animation layers", len(objects.AnimationLayers)},
		{"unknown kinds", len(objects.Unknown)},
	} {
		if row.n > 0 {
			fmt.Printf("%-22s %d\n", row.kind, row.n)
		}
	}
	fmt.Printf("connections: %d\n", len(doc.Connections))
	if doc.Takes != nil {
		fmt.Printf("takes: %d (current %q)\n", len(doc.Takes.Takes), doc.Takes.Current)
	}
	return nil
}
