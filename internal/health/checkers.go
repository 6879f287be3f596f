// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// BinaryChecker verifies that an external tool can be resolved.
type BinaryChecker struct {
	name string
	bin  string
}

func NewBinaryChecker(name, bin string) *BinaryChecker {
	return &BinaryChecker{name: name, bin: bin}
}

func (c *BinaryChecker) Name() string { return c.name }

func (c *BinaryChecker) Check(context.Context) CheckResult {
	path, err := exec.LookPath(c.bin)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: c.bin}
	}
	return CheckResult{Status: StatusHealthy, Message: path}
}

// DirChecker verifies that a directory exists and accepts new files.
type DirChecker struct {
	name string
	path string
}

func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Status: StatusUnhealthy, Error: "directory not found", Message: c.path}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected directory, got file", Message: c.path}
	}
	if err := probeWrite(c.path); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "directory is not writable"}
	}
	return CheckResult{Status: StatusHealthy, Message: "writable"}
}

func probeWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}

// PingChecker adapts a ping function, e.g. a store or Redis client.
// Optional dependencies report degraded instead of unhealthy.
type PingChecker struct {
	name     string
	ping     func(context.Context) error
	optional bool
}

func NewPingChecker(name string, ping func(context.Context) error, optional bool) *PingChecker {
	return &PingChecker{name: name, ping: ping, optional: optional}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		status := StatusUnhealthy
		if c.optional {
			status = StatusDegraded
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
