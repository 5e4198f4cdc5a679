package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/smazurov/procrun/internal/pidfile"
	"github.com/smazurov/procrun/internal/procctl"
	"github.com/spf13/cobra"
)

// CreateStatusCmd creates the status command. It probes the instance
// recorded in the pid file with a null signal and reports whether it is
// still alive.
func CreateStatusCmd() *cobra.Command {
	var pidFilePath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether a running instance exists",
		Long: `Reads the PID file and probes the recorded process. ` +
			`Exits 0 when the instance is running, 1 when it is not, and 64 on a usage error.`,
		Run: func(_ *cobra.Command, _ []string) {
			if pidFilePath == "" {
				fmt.Fprintln(os.Stderr, "No PID file specified")
				os.Exit(int(procctl.StatusUsage))
			}

			pf := pidfile.New(pidFilePath)
			pid, err := pf.Read()
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Println("not running (no PID file)")
					os.Exit(1)
				}
				fmt.Fprintf(os.Stderr, "reading PID file: %v\n", err)
				os.Exit(int(procctl.StatusUsage))
			}

			ctl := procctl.System{}
			if err := ctl.Signal(pid, syscall.Signal(0)); err != nil {
				fmt.Printf("not running (stale PID file, pid %d)\n", pid)
				os.Exit(1)
			}
			fmt.Printf("running (pid %d)\n", pid)
		},
	}

	cmd.Flags().StringVar(&pidFilePath, "pid-file", "", "Path to the PID file to probe")

	return cmd
}
