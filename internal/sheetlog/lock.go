package sheetlog

import (
	"errors"
	"os"
	"syscall"
)

// probeLock renames the file onto itself. Office keeps an open workbook
// locked on Windows shares, which makes the rename fail.
func probeLock(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.Rename(path, path)
}

func isLockError(err error) bool {
	return errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.EACCES) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.Errno(32)) // ERROR_SHARING_VIOLATION
}
