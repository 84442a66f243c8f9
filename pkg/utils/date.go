package utils

import "time"

const dateLayout = "2006-01-02"

// ValidateDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidateDate(s string) error {
	_, err := time.Parse(dateLayout, s)
	return err
}

// Today returns the current date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(dateLayout)
}
