package main

import (
	"errors"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/parallelbench/ep/ep"
)

// Config represents the configuration used for executing the benchmark.
type Config struct {
	ep.Config   `yaml:",inline"`
	MetricsAddr string `yaml:"metrics_addr"`
	Format      string `yaml:"format"`
	Debug       bool   `yaml:"debug"`
	JSONLogs    bool   `yaml:"json_logs"`
}

// ConfigFile represents a namespaced YAML configation file.
type ConfigFile struct {
	EP Config `yaml:"ep"`
}

// ParseConfigFile returns a new ConfigFile given the path to a YAML
// configuration file.
//
// It supports relative and absolute paths and environment variables.
func ParseConfigFile(path string) (*ConfigFile, error) {
	if path == "" {
		return nil, errors.New("no config path specified")
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contents, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var cfgFile ConfigFile
	err = yaml.UnmarshalStrict(contents, &cfgFile)
	if err != nil {
		return nil, err
	}

	return &cfgFile, nil
}
