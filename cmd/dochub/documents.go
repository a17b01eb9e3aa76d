package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dochub/pkg/client"
)

func newListCmd() *cobra.Command {
	var mine, shared, starred bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List documents visible to you",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			var (
				docs []client.Document
				err  error
			)
			switch {
			case mine:
				docs, err = c.Documents.FetchOwned(ctx)
			case shared:
				docs, err = c.Documents.FetchShared(ctx)
			case starred:
				docs, err = c.Documents.FetchStarred(ctx)
			default:
				docs, err = c.Documents.FetchAll(ctx)
			}
			if err != nil {
				return err
			}
			return printDocuments(cmd, docs)
		}),
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "Only documents you own")
	cmd.Flags().BoolVar(&shared, "shared", false, "Only documents shared with you")
	cmd.Flags().BoolVar(&starred, "starred", false, "Only starred documents")
	cmd.MarkFlagsMutuallyExclusive("mine", "shared", "starred")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [slug]",
		Short: "Show a document with its versions, shares and comments",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			detail, err := c.Documents.FetchBySlug(ctx, args[0])
			if err != nil {
				return err
			}
			return printDetail(cmd, detail)
		}),
	}
}

func newUploadCmd() *cobra.Command {
	var (
		title       string
		description string
		tags        []string
		public      bool
	)

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a new document",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			name, data, contentType, err := readFile(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSuffix(name, filepath.Ext(name))
			}

			doc, err := c.Documents.Create(ctx, client.Upload{
				Title:       title,
				Description: description,
				IsPublic:    public,
				Tags:        tags,
				FileName:    name,
				ContentType: contentType,
				Data:        data,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Created %s (%s)\n", doc.Slug, client.FormatFileSize(doc.FileSize))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title (defaults to the file name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Document description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag, may be repeated")
	cmd.Flags().BoolVar(&public, "public", false, "Make the document public")
	return cmd
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search titles, descriptions and tags of visible documents",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			if err := loadCollections(ctx, c); err != nil {
				return err
			}
			return printDocuments(cmd, c.Documents.Search(args[0]))
		}),
	}
}

func newStarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "star [slug]",
		Short: "Toggle the star on a document",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			if err := loadCollections(ctx, c); err != nil {
				return err
			}
			doc, err := c.Documents.ToggleStar(ctx, args[0])
			if err != nil {
				return err
			}
			if doc.IsStarred {
				cmd.Printf("Starred %s\n", doc.Slug)
			} else {
				cmd.Printf("Unstarred %s\n", doc.Slug)
			}
			return nil
		}),
	}
}

func newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share [slug] [user-id] [view|comment|edit]",
		Short: "Share a document with a user",
		Args:  cobra.ExactArgs(3),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			userID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[1])
			}
			permission := client.Permission(strings.ToLower(args[2]))
			if !permission.Valid() {
				return fmt.Errorf("permission must be one of view, comment, edit")
			}

			share, err := c.Documents.Share(ctx, args[0], userID, permission)
			if err != nil {
				return err
			}
			cmd.Printf("Shared with %s (%s), share id %d\n", share.SharedWith.Email, share.Permission, share.ID)
			return nil
		}),
	}
}

func newUnshareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unshare [share-id]",
		Short: "Remove a share",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid share id %q", args[0])
			}
			if err := c.Documents.RemoveShare(ctx, id); err != nil {
				return err
			}
			cmd.Println("Share removed")
			return nil
		}),
	}
}

func newCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment [slug] [text]",
		Short: "Comment on a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			detail, err := c.Documents.FetchBySlug(ctx, args[0])
			if err != nil {
				return err
			}
			comment, err := c.Documents.AddComment(ctx, detail.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			cmd.Printf("Comment %d added\n", comment.ID)
			return nil
		}),
	}
}

func newVersionCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "version [slug] [file]",
		Short: "Upload a new version of a document",
		Args:  cobra.ExactArgs(2),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			name, data, contentType, err := readFile(args[1])
			if err != nil {
				return err
			}
			version, err := c.Documents.AddVersion(ctx, args[0], client.VersionUpload{
				FileName:    name,
				ContentType: contentType,
				Data:        data,
				Comment:     message,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Version %d uploaded (%s)\n", version.VersionNumber, client.FormatFileSize(version.FileSize))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Version comment")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [slug]",
		Short: "Delete a document with all its versions",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			if err := c.Documents.Delete(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show storage usage",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			info, err := c.Backend.Quota(ctx)
			if err != nil {
				return err
			}
			return printValue(cmd, info, func() {
				cmd.Printf("%s of %s used (%.1f%%), %s available\n",
					client.FormatFileSize(info.UsedSpace),
					client.FormatFileSize(info.TotalSpace),
					info.UsagePercent,
					client.FormatFileSize(info.AvailableSpace))
			})
		}),
	}
}

// loadCollections заполняет все коллекции хранилища документов
func loadCollections(ctx context.Context, c *client.Client) error {
	loaders := []func(context.Context) ([]client.Document, error){
		c.Documents.FetchAll,
		c.Documents.FetchOwned,
		c.Documents.FetchShared,
		c.Documents.FetchStarred,
	}
	var errs []error
	for _, load := range loaders {
		if _, err := load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func readFile(path string) (name string, data []byte, contentType string, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return "", nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	name = filepath.Base(path)
	return name, data, mime.TypeByExtension(filepath.Ext(name)), nil
}

func init() {
	rootCmd.AddCommand(
		newListCmd(),
		newShowCmd(),
		newUploadCmd(),
		newSearchCmd(),
		newStarCmd(),
		newShareCmd(),
		newUnshareCmd(),
		newCommentCmd(),
		newVersionCmd(),
		newRemoveCmd(),
		newQuotaCmd(),
	)
}
