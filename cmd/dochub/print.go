package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dochub/pkg/client"
)

// printValue печатает v в формате --output; для таблицы вызывается plain
func printValue(cmd *cobra.Command, v any, plain func()) error {
	switch output {
	case "", "table":
		plain()
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(data))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
	return nil
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

func printDocuments(cmd *cobra.Command, docs []client.Document) error {
	return printValue(cmd, docs, func() {
		tw := newTable()
		tw.AppendHeader(table.Row{"ID", "SLUG", "TITLE", "OWNER", "TYPE", "SIZE", "VERSION", "SHARES", "STARRED", "UPDATED"})
		for _, doc := range docs {
			tw.AppendRow(table.Row{
				doc.ID,
				doc.Slug,
				doc.Title,
				doc.Owner.Email,
				doc.FileType,
				client.FormatFileSize(doc.FileSize),
				doc.CurrentVersion,
				doc.ShareCount,
				star(doc.IsStarred),
				client.FormatDate(doc.UpdatedAt),
			})
		}
		cmd.Printf("%s\n", tw.Render())
	})
}

func printDetail(cmd *cobra.Command, detail *client.DocumentDetail) error {
	return printValue(cmd, detail, func() {
		cmd.Printf("%s %s\n", detail.Title, star(detail.IsStarred))
		cmd.Printf("  slug:     %s\n", detail.Slug)
		cmd.Printf("  owner:    %s <%s>\n", detail.Owner.FullName, detail.Owner.Email)
		cmd.Printf("  file:     %s (%s, %s)\n", detail.File, detail.FileType, client.FormatFileSize(detail.FileSize))
		cmd.Printf("  public:   %t\n", detail.IsPublic)
		cmd.Printf("  created:  %s\n", client.FormatDate(detail.CreatedAt))
		if len(detail.Tags) > 0 {
			cmd.Printf("  tags:     %s\n", strings.Join(detail.Tags, ", "))
		}
		if detail.Description != "" {
			cmd.Printf("\n%s\n", detail.Description)
		}

		if len(detail.Versions) > 0 {
			tw := newTable()
			tw.SetTitle("Versions")
			tw.AppendHeader(table.Row{"#", "SIZE", "BY", "CREATED", "COMMENT"})
			for _, v := range detail.Versions {
				tw.AppendRow(table.Row{v.VersionNumber, client.FormatFileSize(v.FileSize), v.CreatedBy.Email, client.FormatDate(v.CreatedAt), v.Comment})
			}
			cmd.Printf("\n%s\n", tw.Render())
		}

		if len(detail.Shares) > 0 {
			tw := newTable()
			tw.SetTitle("Shares")
			tw.AppendHeader(table.Row{"ID", "USER", "PERMISSION", "SINCE"})
			for _, s := range detail.Shares {
				tw.AppendRow(table.Row{s.ID, s.SharedWith.Email, s.Permission, client.FormatDate(s.CreatedAt)})
			}
			cmd.Printf("\n%s\n", tw.Render())
		}

		if len(detail.Comments) > 0 {
			tw := newTable()
			tw.SetTitle("Comments")
			tw.AppendHeader(table.Row{"ID", "AUTHOR", "DATE", "TEXT"})
			for _, c := range detail.Comments {
				tw.AppendRow(table.Row{c.ID, c.Author.Email, client.FormatDate(c.CreatedAt), c.Content})
			}
			cmd.Printf("\n%s\n", tw.Render())
		}
	})
}

func star(starred bool) string {
	if starred {
		return "★"
	}
	return ""
}
