// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage the local workspace object store",
	Long: `Workspace manages the SQLite object store that upload reads from and
saves to. Objects are addressed as <workspace>/<object>[/<version>], where
workspace and object are names or numeric ids.`,
}

// --- create subcommand ---

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		info, err := store.CreateWorkspace(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("workspace %s (id %d)\n", info.Name, info.ID)
		return nil
	},
}

// --- import subcommand ---

var workspaceImportCmd = &cobra.Command{
	Use:   "import <workspace> <name> <file>",
	Short: "Save a YAML or JSON document as a workspace object",
	Long: `Import reads a YAML or JSON file and saves it under <name> in <workspace>.
Known types are checked against their expected shape:

  ` + strings.Join(knownTypes, "\n  "),
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		objType, _ := cmd.Flags().GetString("type")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		info, err := store.ImportFile(context.Background(), args[0], objType, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("saved %s %s as %s\n", info.Type, info.Name, info.Ref())
		return nil
	},
}

var knownTypes = []string{
	types.TypeDiffExprMatrixSet,
	types.TypeDiffExprMatrix,
	types.TypeExpressionMatrix,
	types.TypeFeatureSet,
	types.TypeGenome,
	types.TypeReport,
}

// --- get subcommand ---

var workspaceGetCmd = &cobra.Command{
	Use:   "get <ref>",
	Short: "Print a workspace object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		infoOnly, _ := cmd.Flags().GetBool("info")
		if err := checkFormat(format, "json", "yaml"); err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if infoOnly {
			info, err := store.GetObjectInfo(context.Background(), args[0])
			if err != nil {
				return err
			}
			return encode(os.Stdout, format, info)
		}

		obj, err := store.GetObject(context.Background(), args[0])
		if err != nil {
			return err
		}
		return encodeRaw(os.Stdout, format, obj.Data)
	},
}

// --- list subcommand ---

var workspaceListCmd = &cobra.Command{
	Use:   "list <workspace>",
	Short: "List the latest version of every object in a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.ListObjects(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No objects found.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "REF\tNAME\tTYPE\tSIZE\tSAVED")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				info.Ref(), info.Name, info.Type, info.Size, info.SaveDate.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

func init() {
	workspaceImportCmd.Flags().String("type", "", "object type, e.g. "+types.TypeDiffExprMatrixSet)
	_ = workspaceImportCmd.MarkFlagRequired("type")

	workspaceGetCmd.Flags().String("format", "json", "output format: json or yaml")
	workspaceGetCmd.Flags().Bool("info", false, "print object metadata instead of the payload")

	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceImportCmd)
	workspaceCmd.AddCommand(workspaceGetCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	rootCmd.AddCommand(workspaceCmd)
}
