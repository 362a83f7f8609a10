package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthops/secret"
)

// Load reads, parses and validates the YAML file at path. Credentials are
// resolved with secret.DefaultResolver.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Credentials are resolved
// with secret.DefaultResolver.
func Parse(data []byte) (*Config, error) {
	return ParseWithResolver(context.Background(), data, secret.DefaultResolver())
}

// ParseWithResolver is Parse with an explicit secret resolver.
//
// The sequence is: strict decode (unknown fields are errors), defaults,
// credential resolution, validation.
func ParseWithResolver(ctx context.Context, data []byte, resolver *secret.Resolver) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	ApplyDefaults(&cfg)

	if resolver != nil {
		if err := resolveSecrets(ctx, &cfg, resolver); err != nil {
			return nil, err
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveSecrets(ctx context.Context, cfg *Config, resolver *secret.Resolver) error {
	for i := range cfg.HTTP.APIKeys {
		k := &cfg.HTTP.APIKeys[i]
		if k.Key == "" {
			continue
		}
		resolved, err := resolver.ResolveValue(ctx, k.Key)
		if err != nil {
			return fmt.Errorf("config: http.api_keys[%d].key: %w", i, err)
		}
		k.Key = resolved
	}
	for i := range cfg.Contributors.HTTP {
		p := &cfg.Contributors.HTTP[i]
		for name, v := range p.Header {
			resolved, err := resolver.ResolveValue(ctx, v)
			if err != nil {
				return fmt.Errorf("config: contributors.http[%d].header.%s: %w", i, name, err)
			}
			p.Header[name] = resolved
		}
	}
	if jwt := cfg.HTTP.JWT; jwt != nil && jwt.HMACSecret != "" {
		resolved, err := resolver.ResolveValue(ctx, jwt.HMACSecret)
		if err != nil {
			return fmt.Errorf("config: http.jwt.hmac_secret: %w", err)
		}
		jwt.HMACSecret = resolved
	}
	return nil
}
