package models

import "fmt"

type ExitStatus int

func (e ExitStatus) Error() string {
	return fmt.Sprintf("exit %d", e)
}

// ExitFor converts a firmware status into the process exit status.
func ExitFor(s Status) error {
	if s == Success {
		return nil
	}
	return ExitStatus(s.ExitCode())
}
