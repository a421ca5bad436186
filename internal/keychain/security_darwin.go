// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/99designs/keyring"
)

// securityBackend drives the macOS security command directly.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{}, nil
}

func (s *securityBackend) Set(key, value string) error {
	_ = s.Delete(key)
	_, stderr, err := security("add-generic-password", "-a", ServiceName, "-s", key, "-w", value, "-U")
	if err != nil {
		return fmt.Errorf("store %q in keychain: %s: %w", key, stderr, err)
	}
	return nil
}

func (s *securityBackend) Get(key string) (string, error) {
	stdout, stderr, err := security("find-generic-password", "-a", ServiceName, "-s", key, "-w")
	if err != nil {
		if strings.Contains(stderr, "could not be found") {
			return "", keyring.ErrKeyNotFound
		}
		return "", fmt.Errorf("read %q from keychain: %s: %w", key, stderr, err)
	}
	return strings.TrimSpace(stdout), nil
}

func (s *securityBackend) Delete(key string) error {
	_, stderr, err := security("delete-generic-password", "-a", ServiceName, "-s", key)
	if err != nil {
		if strings.Contains(stderr, "could not be found") {
			return nil
		}
		return fmt.Errorf("delete %q from keychain: %s: %w", key, stderr, err)
	}
	return nil
}

func security(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command("security", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
