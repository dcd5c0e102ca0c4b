//go:build windows

package sharedmem

import (
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	"unsafe"
)

var procOpenFileMapping = windows.NewLazySystemDLL("kernel32.dll").NewProc("OpenFileMappingW")

// Reader maps the section lazily, the game may start after us.
type Reader struct {
	name   string
	handle windows.Handle
	addr   uintptr
	buf    []byte
	warned bool
}

func NewReader(name string) *Reader {
	return &Reader{
		name: name,
		buf:  make([]byte, RecordSize),
	}
}

func (r *Reader) open() error {
	name, err := windows.UTF16PtrFromString(r.name)
	if err != nil {
		return errors.Wrapf(err, "invalid section name %s", r.name)
	}
	h, _, callErr := procOpenFileMapping.Call(windows.FILE_MAP_READ, 0, uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return errors.Wrapf(callErr, "unable to open shared memory %s", r.name)
	}
	addr, err := windows.MapViewOfFile(windows.Handle(h), windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		_ = windows.CloseHandle(windows.Handle(h))
		return errors.Wrapf(err, "unable to map shared memory %s", r.name)
	}
	r.handle = windows.Handle(h)
	r.addr = addr
	log.WithField("name", r.name).Info("shared memory mapped")
	return nil
}

// TryRead returns telemetry.ErrNoData until the game has created the section.
func (r *Reader) TryRead() (telemetry.Sample, error) {
	if r.addr == 0 {
		if err := r.open(); err != nil {
			if !r.warned {
				log.WithField("err", err).Warn("x86GP2 is not found, waiting")
				r.warned = true
			}
			return telemetry.Sample{}, telemetry.ErrNoData
		}
	}
	copy(r.buf, unsafe.Slice((*byte)(unsafe.Pointer(r.addr)), RecordSize))
	return Decode(r.buf)
}

func (r *Reader) Close() error {
	if r.addr == 0 {
		return nil
	}
	if err := windows.UnmapViewOfFile(r.addr); err != nil {
		return errors.Wrap(err, "unable to unmap shared memory")
	}
	r.addr = 0
	return windows.CloseHandle(r.handle)
}
