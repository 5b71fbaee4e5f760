//go:build windows

package shell

import (
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// terminateProcessGroup uses taskkill /T so the shell's children go down with it.
func terminateProcessGroup(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}

// setVerbatimCommandLine hands cmd.exe the command line untouched; Go's argument
// quoting would otherwise add backslash escapes cmd.exe does not understand.
func setVerbatimCommandLine(c *exec.Cmd, binary string, args []string) {
	if c.SysProcAttr == nil {
		c.SysProcAttr = &syscall.SysProcAttr{}
	}
	c.SysProcAttr.CmdLine = binary + " " + strings.Join(args, " ")
}
