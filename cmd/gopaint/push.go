/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gopaint/internal/backend"
	"gopaint/internal/config"
	"gopaint/internal/export"
)

const tokenTTL = 30 * 24 * time.Hour

func newPushCmd(a *cliApp) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "push <drawing>",
		Short: "Upload a rendered drawing to the drawings service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dh, sc, err := openDocument(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = dh.Drawing.Title
			}
			var buf bytes.Buffer
			if err := export.WritePNG(&buf, sc); err != nil {
				return err
			}
			ctx := cmd.Context()
			c := backend.NewClientFromConfig(a.cfg, a.token)
			stored := c.Token != ""
			if !stored {
				if err := a.refreshToken(cmd, c); err != nil {
					return err
				}
			}
			d, err := c.CreateDrawing(ctx, title, buf.Bytes())
			var ae *backend.APIError
			if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized && stored {
				a.log.Info("stored token rejected, requesting a new one")
				if err := a.refreshToken(cmd, c); err != nil {
					return err
				}
				d, err = c.CreateDrawing(ctx, title, buf.Bytes())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s\n", d.Title, d.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title on the server (default: the drawing's title)")
	return cmd
}

// refreshToken asks the server for a token and keeps it in the keyring.
func (a *cliApp) refreshToken(cmd *cobra.Command, c *backend.Client) error {
	tok, _, err := c.RequestToken(cmd.Context(), subject(), tokenTTL)
	if err != nil {
		return fmt.Errorf("request token: %w", err)
	}
	a.token = tok
	if err := config.SaveToken(tok); err != nil {
		a.log.Warn("token not stored in keyring", slog.Any("err", err))
	}
	return nil
}

func subject() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return "gopaint"
}
