/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides.
const (
	EnvConfigPath       = "GOPAINT_CONFIG"
	EnvBackendURL       = "GOPAINT_BACKEND_URL"
	EnvBackendTimeoutMs = "GOPAINT_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "GOPAINT_TLS_INSECURE"
	EnvServerAddr       = "GOPAINT_ADDR"
	EnvDatabaseURL      = "GOPAINT_DATABASE_URL"
	EnvTelemetryOptIn   = "GOPAINT_TELEMETRY_OPT_IN"
	EnvEnableServer     = "GOPAINT_ENABLE_SERVER"
	EnvDocumentsDir     = "GOPAINT_DOCUMENTS_DIR"
	EnvCatalogPath      = "GOPAINT_CATALOG"
	EnvLogLevel         = "GOPAINT_LOG_LEVEL"
	EnvLogFormat        = "GOPAINT_LOG_FORMAT"
	EnvLogSource        = "GOPAINT_LOG_SOURCE"
	EnvLogFile          = "GOPAINT_LOG_FILE"
)

// envBinding ties a settings key to the variable that overrides it.
type envBinding struct {
	key, env string
	set      func(c *AppConfig, v string)
}

func str(field func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *field(c) = v }
}

func lower(field func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *field(c) = strings.ToLower(v) }
}

func flag(field func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *field(c) = parseBool(v) }
}

var envBindings = []envBinding{
	{"backend.base_url", EnvBackendURL, str(func(c *AppConfig) *string { return &c.Backend.BaseURL })},
	{"backend.timeout_ms", EnvBackendTimeoutMs, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutMs = n
		}
	}},
	{"backend.tls_insecure", EnvBackendTLSInsec, flag(func(c *AppConfig) *bool { return &c.Backend.TLSInsecure })},
	{"backend.addr", EnvServerAddr, str(func(c *AppConfig) *string { return &c.Backend.Addr })},
	{"backend.database_url", EnvDatabaseURL, str(func(c *AppConfig) *string { return &c.Backend.DatabaseURL })},
	{"general.telemetry_opt_in", EnvTelemetryOptIn, flag(func(c *AppConfig) *bool { return &c.General.TelemetryOptIn })},
	{"general.enable_server", EnvEnableServer, flag(func(c *AppConfig) *bool { return &c.General.EnableServer })},
	{"general.documents_dir", EnvDocumentsDir, str(func(c *AppConfig) *string { return &c.General.DocumentsDir })},
	{"catalog.path", EnvCatalogPath, str(func(c *AppConfig) *string { return &c.Catalog.Path })},
	{"logging.level", EnvLogLevel, lower(func(c *AppConfig) *string { return &c.Logging.Level })},
	{"logging.format", EnvLogFormat, lower(func(c *AppConfig) *string { return &c.Logging.Format })},
	{"logging.source", EnvLogSource, flag(func(c *AppConfig) *bool { return &c.Logging.Source })},
	{"logging.file", EnvLogFile, str(func(c *AppConfig) *string { return &c.Logging.File })},
}

// parseBool accepts 1, true, on and yes in any case; anything else is false.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// applyEnv applies every non-blank override found through getenv.
func applyEnv(cfg *AppConfig, getenv func(string) string) {
	for _, b := range envBindings {
		if v := strings.TrimSpace(getenv(b.env)); v != "" {
			b.set(cfg, v)
		}
	}
}

// EnvOverrideFor reports the variable currently overriding the settings
// key, such as "logging.level".
func EnvOverrideFor(key string) (string, bool) {
	for _, b := range envBindings {
		if b.key == key && os.Getenv(b.env) != "" {
			return b.env, true
		}
	}
	return "", false
}
