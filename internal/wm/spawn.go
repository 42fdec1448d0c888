package wm

import (
	"os/exec"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Spawn launches argStr as a detached subprocess: a new session leader
// via Setsid, stdio left connected to the manager's own (so terminal
// programs spawned for debugging still inherit a controlling tty when
// there is one), and no Wait beyond reaping it once it exits. A lost
// subprocess never affects the manager.
func Spawn(argStr string) error {
	fields := strings.Fields(argStr)
	if len(fields) == 0 {
		return errors.New("spawn: empty command")
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "spawn %q", argStr)
	}
	go func() {
		_ = cmd.Wait() // reap; the manager never blocks on subprocess exit
	}()
	return nil
}

// SpawnArgv is identical to Spawn but takes an already-split argv, used
// by the WM_COMMAND-driven restart/exec paths where arguments may
// legitimately contain spaces.
func SpawnArgv(argv []string) error {
	if len(argv) == 0 {
		return errors.New("spawn: empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "spawn %v", argv)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// ExecReplace replaces the current process image with argv, used on
// shutdown to re-exec into the command left in WM_COMMAND. It never
// returns on success.
func ExecReplace(argv []string, envv []string) error {
	if len(argv) == 0 {
		return errors.New("exec: empty argv")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return errors.Wrapf(err, "resolve %q", argv[0])
	}
	return unix.Exec(path, argv, envv)
}
