/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gopaint/internal/storage"
)

const listLayout = "2006-01-02 15:04"

func newCatalogCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the drawing catalog",
	}
	// withCatalog opens the configured catalog for one subcommand.
	withCatalog := func(run func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			path, err := a.cfg.CatalogPath()
			if err != nil {
				return err
			}
			c, err := storage.OpenCatalog(path)
			if err != nil {
				return err
			}
			defer c.Close()
			return run(cmd.Context(), cmd, c, args)
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalogued drawings, newest first",
		Args:  cobra.NoArgs,
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, _ []string) error {
			entries, err := c.List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCREATED\tFILE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Title, e.Created.Local().Format(listLayout), e.File)
			}
			return tw.Flush()
		}),
	}

	add := &cobra.Command{
		Use:   "add <drawing>...",
		Short: "Catalog drawings without modifying them",
		Args:  cobra.MinimumNArgs(1),
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error {
			for _, p := range args {
				abs, err := filepath.Abs(p)
				if err != nil {
					return err
				}
				dh, err := storage.Open(abs)
				if err != nil {
					return err
				}
				if err := c.Upsert(ctx, storage.EntryOf(dh)); err != nil {
					return err
				}
				if err := c.SaveRevision(ctx, &dh.Drawing, time.Now()); err != nil {
					a.log.Warn("revision not stored", "id", dh.Drawing.ID, "err", err)
				}
				if err := c.RefreshThumbnail(ctx, &dh.Drawing, storage.ThumbSize); err != nil {
					a.log.Warn("thumbnail not stored", "id", dh.Drawing.ID, "err", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", dh.Drawing.Title, dh.Drawing.ID)
			}
			return nil
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove drawings from the catalog; their files stay",
		Args:  cobra.MinimumNArgs(1),
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error {
			for _, id := range args {
				if err := c.Delete(ctx, id); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed", id)
			}
			return nil
		}),
	}

	var q storage.SearchQuery
	var from, to string
	search := &cobra.Command{
		Use:   "search [text]",
		Short: "Search titles and text of catalogued drawings",
		Args:  cobra.MaximumNArgs(1),
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error {
			if len(args) == 1 {
				q.Text = args[0]
			}
			var err error
			if q.CreatedFrom, err = parseDate(from); err != nil {
				return err
			}
			if q.CreatedTo, err = parseDate(to); err != nil {
				return err
			}
			res, err := c.Search(ctx, q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range res {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Created.Local().Format(listLayout), r.Snippet)
			}
			return tw.Flush()
		}),
	}
	search.Flags().StringVar(&from, "from", "", "created on or after (YYYY-MM-DD or RFC3339)")
	search.Flags().StringVar(&to, "to", "", "created on or before (YYYY-MM-DD or RFC3339)")
	search.Flags().IntVar(&q.Limit, "limit", 100, "maximum results")
	search.Flags().IntVar(&q.Offset, "offset", 0, "results to skip")

	history := &cobra.Command{
		Use:   "history <id>",
		Short: "List stored revisions of a drawing, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error {
			revs, err := c.Revisions(ctx, args[0], 0)
			if err != nil {
				return err
			}
			for i, r := range revs {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s  %d shapes\n", i, r.TS.Local().Format(time.DateTime), len(r.Drawing.Shapes))
			}
			return nil
		}),
	}

	restore := &cobra.Command{
		Use:   "restore <id> <revision>",
		Short: "Write a stored revision back to the drawing's file",
		Args:  cobra.ExactArgs(2),
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error {
			rev, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("revision %q: %w", args[1], err)
			}
			dh, err := c.Restore(ctx, args[0], rev)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Restored", dh.Path)
			return nil
		}),
	}

	rescan := &cobra.Command{
		Use:   "rescan [dir]",
		Short: "Catalog every drawing in a directory and drop missing files",
		Args:  cobra.MaximumNArgs(1),
		RunE: withCatalog(func(ctx context.Context, cmd *cobra.Command, c *storage.Catalog, args []string) error {
			dir := a.cfg.General.Documents()
			if len(args) == 1 {
				dir = args[0]
			}
			n, err := c.Rescan(ctx, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d drawings in %s\n", n, dir)
			return nil
		}),
	}

	cmd.AddCommand(list, add, rm, search, history, restore, rescan)
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}
