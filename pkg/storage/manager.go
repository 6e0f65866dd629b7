package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the storage manager. The local disk is always available;
// the S3 disk is added only when S3_BUCKET is configured.
func Connect(ctx context.Context) {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()
	disks["local"] = NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())

	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk(ctx)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}

	if _, ok := disks[defaultDisk]; !ok {
		logger.Warn("storage: default disk not configured, using local", "disk", defaultDisk)
		defaultDisk = "local"
	}
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk selected by STORAGE_DISK. It falls back to a
// local disk on the configured root when Connect has not run.
func Default() Disk {
	managerMu.RLock()
	d, ok := disks[defaultDisk]
	managerMu.RUnlock()
	if ok {
		return d
	}
	return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
}

// RegisterDisk plugs in a custom Disk and optionally makes it the default.
func RegisterDisk(name string, d Disk, makeDefault bool) {
	managerMu.Lock()
	disks[name] = d
	if makeDefault {
		defaultDisk = name
	}
	managerMu.Unlock()
}
