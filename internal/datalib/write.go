package datalib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Write emits tables in the order given, in the format Parse reads.
func Write(w io.Writer, tables ...*Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintf(bw, "#start %s\n", t.Name)
		fmt.Fprintf(bw, "#colnames %s\n", strings.Join(t.ColNames, " "))
		if len(t.ColTypes) > 0 {
			fmt.Fprintf(bw, "#coltypes %s\n", strings.Join(t.ColTypes, " "))
		}
		for row := 0; row < t.rows; row++ {
			fields := make([]string, len(t.ColNames))
			for i, name := range t.ColNames {
				fields[i] = strconv.FormatFloat(t.columns[name][row], 'g', -1, 64)
			}
			fmt.Fprintln(bw, strings.Join(fields, " "))
		}
		fmt.Fprintln(bw, "#end")
	}
	return bw.Flush()
}

func WriteFile(path string, tables ...*Table) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("table file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, tables...); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
