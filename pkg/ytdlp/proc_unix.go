//go:build unix

package ytdlp

import (
	"errors"
	"os/exec"

	"golang.org/x/sys/unix"
)

// setProcessGroup starts cmd in its own process group and makes cancellation
// kill the whole group, so external downloaders spawned by yt-dlp (aria2c,
// ffmpeg) die with it instead of holding the output pipes open.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			return cmd.Process.Kill()
		}
		return nil
	}
}
