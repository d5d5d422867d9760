package snapshot

// SetRenameDir replaces the rename used to move a snapshot into place
func SetRenameDir(fn func(oldpath, newpath string) error) (restore func()) {
	prev := renameDir
	renameDir = fn
	return func() { renameDir = prev }
}
