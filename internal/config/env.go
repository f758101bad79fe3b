package config

import (
	"fmt"
	"strconv"
)

// LookupFunc reads one environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Environment overrides. LIT_* names win over the legacy names.
const (
	EnvExportDir       = "LIT_EXPORT_DIR"
	EnvUniqueFile      = "LIT_UNIQUE_FILE"
	EnvDuplicateFile   = "LIT_DUPLICATE_FILE"
	EnvTaxonomyFile    = "LIT_TAXONOMY_FILE"
	EnvOutputDir       = "LIT_OUTPUT_DIR"
	EnvLogLevel        = "LIT_LOG_LEVEL"
	EnvLogFile         = "LIT_LOG_FILE"
	EnvClusterMax      = "LIT_CLUSTER_MAX_RECORDS"
	EnvLegacyUnique    = "UNIQUE_FILE_PATH"
	EnvLegacyDuplicate = "DUPLICATE_FILE_PATH"
)

// ApplyEnv overrides settings from the environment read through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := get(EnvExportDir); ok {
		c.Paths.ExportDir = v
	}
	if v, ok := get(EnvUniqueFile, EnvLegacyUnique); ok {
		c.Paths.UniqueFile = v
	}
	if v, ok := get(EnvDuplicateFile, EnvLegacyDuplicate); ok {
		c.Paths.DuplicateFile = v
	}
	if v, ok := get(EnvTaxonomyFile); ok {
		c.Paths.TaxonomyFile = v
	}
	if v, ok := get(EnvOutputDir); ok {
		c.Paths.OutputDir = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := get(EnvLogFile); ok {
		c.Logging.File = v
	}
	if v, ok := get(EnvClusterMax); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvClusterMax, err)
		}
		c.Cluster.MaxRecords = n
	}
	return c.Validate()
}
