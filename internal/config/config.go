package config

import (
	"encoding/base64"
	"fmt"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	SigningKey     []byte
	AllowedOrigins []string

	// OwnerHandle/OwnerPassword designate the owner identity resolved from
	// deployment secrets. Empty disables the owner bypass.
	OwnerHandle   string
	OwnerPassword string

	// AccessSecret enables the shared-secret login mode when non-empty.
	AccessSecret string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, databaseDSN, base64Secret string, allowedOrigins []string, ownerHandle, ownerPassword, accessSecret string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	if ownerHandle != "" && ownerPassword == "" {
		return nil, fmt.Errorf("owner handle set without owner password")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		OwnerHandle:    ownerHandle,
		OwnerPassword:  ownerPassword,
		AccessSecret:   accessSecret,
	}, nil
}
