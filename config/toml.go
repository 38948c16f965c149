package config

import (
	"bytes"
	_ "embed"
	"text/template"

	cmtos "github.com/cometbft/cometbft/libs/os"
)

// The template keys must stay in sync with the mapstructure tags on
// Config and GovAppConfig in config.go.
//
//go:embed config.toml.tpl
var configTemplateText string

var configTemplate = template.Must(
	template.New("configFile").Parse(configTemplateText))

// WriteConfigFile renders the node configuration, the CometBFT sections
// plus the [app] governance section, into configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, config); err != nil {
		panic(err)
	}
	cmtos.MustWriteFile(configFilePath, buf.Bytes(), 0o644)
}
