//go:build !windows

package walker

import (
	"os"
	"syscall"
)

// inodeKeyOf extracts a (device, inode) pair identifying a filesystem
// entry, used to break symlink loops (spec §4.1).
func inodeKeyOf(path string) (inodeKey, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return inodeKey{}, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return inodeKey{}, false
	}
	return inodeKey{dev: uint64(st.Dev), ino: st.Ino}, true
}
