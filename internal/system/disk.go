package system

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// VolumeInfo describes the filesystem holding a path.
type VolumeInfo struct {
	Path      string
	TotalSize uint64
	FreeSize  uint64
	UsedSize  uint64
}

// GetVolumeInfo returns capacity figures for the filesystem that
// contains path.
func GetVolumeInfo(path string) (VolumeInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	var st unix.Statfs_t
	if err := unix.Statfs(abs, &st); err != nil {
		return VolumeInfo{}, fmt.Errorf("statfs %s failed: %w", abs, err)
	}

	total := uint64(st.Bsize) * st.Blocks
	free := uint64(st.Bsize) * st.Bavail

	return VolumeInfo{
		Path:      abs,
		TotalSize: total,
		FreeSize:  free,
		UsedSize:  total - free,
	}, nil
}

// FileSize returns the size of a regular file in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size(), nil
}
