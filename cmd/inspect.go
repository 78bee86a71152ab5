package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sidenav/internal/toc"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the table of contents tree",
	Long: `Parses the configured table of contents and prints it as a tree. With
--page the sidebar is rendered for that page first and the active path is
reported.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("page", "", "page whose active path is reported")
	inspectCmd.Flags().Bool("json", false, "print JSON instead of a tree")
	rootCmd.AddCommand(inspectCmd)
}

type inspectResult struct {
	Page       string      `json:"page,omitempty"`
	Entries    int         `json:"entries"`
	Tree       []*toc.Node `json:"tree"`
	ActivePath []string    `json:"active_path,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	markup, err := loadMarkup(cfg)
	if err != nil {
		return err
	}

	page, _ := cmd.Flags().GetString("page")
	if page != "" {
		m, _, err := attachPage(cfg, markup, page, nil)
		if err != nil {
			return err
		}
		markup = m.InnerHTML()
	}

	root, err := toc.Parse(markup)
	if err != nil {
		return err
	}

	res := inspectResult{Page: page, Entries: root.Len(), Tree: root.Children}
	for _, n := range root.ActivePath() {
		res.ActivePath = append(res.ActivePath, n.Label)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printTree(out, root)
	fmt.Fprintf(out, "\n%d entries\n", res.Entries)
	if page != "" {
		if len(res.ActivePath) == 0 {
			fmt.Fprintf(out, "No entry matches %s\n", page)
		} else {
			fmt.Fprintf(out, "Active: %s\n", strings.Join(res.ActivePath, " > "))
		}
	}
	return nil
}

func printTree(w io.Writer, root *toc.Node) {
	root.Walk(func(n *toc.Node, depth int) bool {
		indent := strings.Repeat("  ", depth-1)
		label := n.Label
		if n.Number != "" {
			label = n.Number + " " + label
		}
		switch {
		case n.Kind == toc.KindPart:
			fmt.Fprintf(w, "%s# %s\n", indent, n.Label)
			return true
		case n.Draft():
			fmt.Fprintf(w, "%s%s (draft)\n", indent, label)
			return true
		}

		marks := ""
		if n.Active {
			marks += " *"
		}
		if len(n.Children) > 0 && !n.Expanded {
			marks += " [collapsed]"
		}
		fmt.Fprintf(w, "%s%s  %s%s\n", indent, label, n.Href, marks)
		return true
	})
}
