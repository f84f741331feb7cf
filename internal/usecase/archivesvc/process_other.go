//go:build !unix

package archivesvc

import "os/exec"

// configureKill: без групп процессов остаётся поведение exec по умолчанию (Process.Kill).
func configureKill(cmd *exec.Cmd) {}
