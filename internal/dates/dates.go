// Package dates converts event dates between their three textual forms:
// the storage form (YYYY-MM-DD), the admin display form (MM/DD/YYYY) and
// the long form shown on the public site ("September 1, 1859"). Storage
// and display forms are lossless inverses of each other.
package dates

import "time"

const (
	StorageLayout = "2006-01-02"
	DisplayLayout = "01/02/2006"
	longLayout    = "January 2, 2006"
)

// ToDisplay converts a storage-form date to display form.
func ToDisplay(storage string) (string, error) {
	t, err := time.Parse(StorageLayout, storage)
	if err != nil {
		return "", err
	}
	return t.Format(DisplayLayout), nil
}

// ToStorage converts a display-form date to storage form.
func ToStorage(display string) (string, error) {
	t, err := time.Parse(DisplayLayout, display)
	if err != nil {
		return "", err
	}
	return t.Format(StorageLayout), nil
}

// LongForm renders a storage-form date the way the public timeline shows
// it. Invalid input yields the empty string.
func LongForm(storage string) string {
	t, err := time.Parse(StorageLayout, storage)
	if err != nil {
		return ""
	}
	return t.Format(longLayout)
}
