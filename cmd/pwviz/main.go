// pwviz renders offline analyses of Polyworld runs.
//
// Usage:
//
//	pwviz barplot <cluster-file> [--run dir] [--min-size n] -o fingerprints.png
//	pwviz scatter [run-dir] [-x time] [-y P] [-d|-p|-b] -o scatter.png
//	pwviz genome [--run dir] [--genes 5,11] -o genome.png
//	pwviz population <cluster-file> [--run dir] -o population.png
//	pwviz movie <cluster-file> [--run dir] [--anim dir] [--no-encode]
//	pwviz avr <run-dir>... [--recent Recent] [--metric CC,SP] -o avr.png
//	pwviz hist <metric-file>... [--type P] [--bins 11] -o hist.png
//	pwviz deaths [run-dir]
//	pwviz stats [--key key]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

func main() {
	if err := runMain(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func runMain(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

// execute builds a fresh command tree per call so repeated runs share no
// flag state.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{out: stdout, errOut: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		err = usageError(err.Error())
	}
	var uerr *usageErr
	if errors.As(err, &uerr) && cmd != nil {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return err
}

type usageErr struct {
	msg string
}

func (e *usageErr) Error() string {
	return e.msg
}

func usageError(msg string) error {
	return &usageErr{msg: msg}
}

func exitCode(err error) int {
	var uerr *usageErr
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}
