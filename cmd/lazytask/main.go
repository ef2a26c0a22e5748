package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sandeepkv93/lazytask/internal/cli"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := cli.NewRootCommand(cli.Options{
		Stdin:   os.Stdin,
		Stdout:  stdout,
		Stderr:  stderr,
		Version: version,
	})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
