package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/employeehub/internal/flagx"
	"github.com/dmitrijs2005/employeehub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL *string         `json:"server_url"`
	Token     *string         `json:"token"`
	Timeout   *timex.Duration `json:"timeout"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Keys absent from the file leave the current values alone.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.Token != nil {
		cfg.Token = *jc.Token
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
}
