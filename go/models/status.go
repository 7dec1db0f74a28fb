package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status is a firmware status code. Error codes carry the high bit.
type Status uint64

const errorBit = 1 << 63

const (
	Success          Status = 0
	LoadError        Status = errorBit | 1
	InvalidParameter Status = errorBit | 2
	Unsupported      Status = errorBit | 3
	BadBufferSize    Status = errorBit | 4
	BufferTooSmall   Status = errorBit | 5
	NotReady         Status = errorBit | 6
	DeviceError      Status = errorBit | 7
	WriteProtected   Status = errorBit | 8
	OutOfResources   Status = errorBit | 9
	VolumeCorrupted  Status = errorBit | 10
	VolumeFull       Status = errorBit | 11
	NoMedia          Status = errorBit | 12
	MediaChanged     Status = errorBit | 13
	NotFound         Status = errorBit | 14
	AccessDenied     Status = errorBit | 15
	EndOfFile        Status = errorBit | 31
	Aborted          Status = errorBit | 21
)

var statusText = map[Status]string{
	Success:          "Success",
	LoadError:        "Load Error",
	InvalidParameter: "Invalid Parameter",
	Unsupported:      "Unsupported",
	BadBufferSize:    "Bad Buffer Size",
	BufferTooSmall:   "Buffer Too Small",
	NotReady:         "Not Ready",
	DeviceError:      "Device Error",
	WriteProtected:   "Write Protected",
	OutOfResources:   "Out of Resources",
	VolumeCorrupted:  "Volume Corrupt",
	VolumeFull:       "Volume Full",
	NoMedia:          "No Media",
	MediaChanged:     "Media changed",
	NotFound:         "Not Found",
	AccessDenied:     "Access Denied",
	EndOfFile:        "End of File",
	Aborted:          "Aborted",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	if s.IsError() {
		return fmt.Sprintf("Error %#x", uint64(s&^errorBit))
	}
	return fmt.Sprintf("Warning %#x", uint64(s))
}

func (s Status) Error() string {
	return s.String()
}

func (s Status) IsError() bool {
	return s&errorBit != 0
}

// Err returns nil for Success and the status itself otherwise, so firmware
// wrappers can return it directly.
func (s Status) Err() error {
	if s == Success {
		return nil
	}
	return s
}

// ExitCode folds the status into a process exit code.
func (s Status) ExitCode() int {
	return int(s &^ errorBit & 0xff)
}

// StatusOf recovers the firmware status from a (possibly wrapped) error.
// Errors that did not originate in the firmware are reported as LoadError.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	if s, ok := errors.Cause(err).(Status); ok {
		return s
	}
	return LoadError
}
