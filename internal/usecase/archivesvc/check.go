package archivesvc

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Status хранит результат проверки одного требования.
type Status struct {
	Name      string
	Target    string
	Available bool
	Detail    string
}

// CheckArchiver проверяет, что бинарник архиватора находится и каталог с фото читается.
func CheckArchiver(command []string, photosDir string) []Status {
	results := make([]Status, 0, 2)

	bin := Status{Name: "archiver", Target: strings.Join(command, " ")}
	switch {
	case len(command) == 0:
		bin.Detail = "command not configured"
	default:
		if path, err := exec.LookPath(command[0]); err != nil {
			bin.Detail = fmt.Sprintf("binary %q not found", command[0])
		} else {
			bin.Available = true
			bin.Detail = path
		}
	}
	results = append(results, bin)

	dir := Status{Name: "photos dir", Target: photosDir}
	info, err := os.Stat(photosDir)
	switch {
	case err != nil:
		dir.Detail = err.Error()
	case !info.IsDir():
		dir.Detail = "not a directory"
	default:
		if _, err := os.ReadDir(photosDir); err != nil {
			dir.Detail = err.Error()
		} else {
			dir.Available = true
		}
	}
	results = append(results, dir)

	return results
}
