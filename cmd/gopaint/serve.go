/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gopaint/internal/backend"
)

func newServeCmd(a *cliApp) *cobra.Command {
	var addr, dbURL string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the drawings service backed by Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := backend.ConfigFrom(a.cfg)
			if addr != "" {
				cfg.Addr = addr
			}
			if dbURL != "" {
				cfg.DBURL = dbURL
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return backend.Serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, GOPAINT_ADDR or PORT)")
	cmd.Flags().StringVar(&dbURL, "db", "", "Postgres URL (default from config or DATABASE_URL)")
	return cmd
}
