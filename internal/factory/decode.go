package factory

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"studio/internal/errs"
)

// DecodeTokenConfig turns a tagged record into a TokenConfig. Keys that are
// not TokenConfig fields are rejected.
func DecodeTokenConfig(raw map[string]any) (TokenConfig, error) {
	var cfg TokenConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return TokenConfig{}, err
	}
	return cfg, nil
}

// DecodeNFTConfig turns a tagged record into an NFTConfig.
func DecodeNFTConfig(raw map[string]any) (NFTConfig, error) {
	var cfg NFTConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return NFTConfig{}, err
	}
	return cfg, nil
}

// DecodeGovernanceConfig turns a tagged record into a GovernanceConfig.
func DecodeGovernanceConfig(raw map[string]any) (GovernanceConfig, error) {
	var cfg GovernanceConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return GovernanceConfig{}, err
	}
	return cfg, nil
}

func decodeConfig(raw map[string]any, out any) error {
	for _, key := range []string{"kind", "salt"} {
		if v, ok := raw[key]; !ok || v == nil {
			return errs.InvalidField(key, "required")
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
		TagName:     "mapstructure",
		Result:      out,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return &errs.ConfigError{Reason: err.Error()}
	}
	return nil
}
