package monitor

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/prometheus/procfs"
)

// ProcFS reads process statistics from /proc
type ProcFS struct {
	fs procfs.FS
}

// NewProcFS returns a Source on the default /proc mount point
func NewProcFS() (*ProcFS, error) {

	pfs, err := procfs.NewDefaultFS()

	if err != nil {
		return nil, fmt.Errorf("error opening procfs: %w", err)
	}

	return &ProcFS{fs: pfs}, nil
}

// Stat reads /proc/<pid>/stat.  Zombie and dead processes are reported as
// exited.
func (p *ProcFS) Stat(pid int) (Stat, error) {

	proc, err := p.fs.Proc(pid)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stat{}, fmt.Errorf("%w: no such process", ErrProcessLookup)
		}
		return Stat{}, err
	}

	st, err := proc.Stat()

	if err != nil {
		return Stat{}, err
	}

	return Stat{
		CPUTime: st.CPUTime(),
		VMS:     uint64(st.VirtualMemory()),
		RSS:     uint64(st.ResidentMemory()),
		Exited:  st.State == "Z" || st.State == "X",
	}, nil
}
