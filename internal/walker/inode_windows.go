//go:build windows

package walker

// inodeKeyOf has no portable device/inode pair on Windows through os.Stat;
// the caller falls back to path-length-based dedup, which is weaker but
// still breaks the common symlink-loop case.
func inodeKeyOf(path string) (inodeKey, bool) {
	return inodeKey{}, false
}
