package main

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/scowcron/sateko/compiler"
	"github.com/scowcron/sateko/compiler/back"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "translate source files to llvm ir",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "out.ll", "ir output file"),
			cli.NewFlag("tape,t", back.DefaultTapeLen, "number of cells on tape"),
			cli.NewFlag("cc,c", "", "llvm compiler to run on the output (llc)"),
		},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "interpret source files",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("tape,t", back.DefaultTapeLen, "number of cells on tape"),
		},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "dump the resolved program",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "sateko",
		Description: "sateko is a brainfuck compiler",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
			cli.FlagfileFlag,
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			compileCmd,
			runCmd,
			parseCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.DefaultLogger.SetVerbosity(c.String("verbosity"))

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	out := c.String("out")

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, c.Int("tape"))
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		err = os.WriteFile(out, obj, 0o644)
		if err != nil {
			return errors.Wrap(err, "write %v", out)
		}

		if cc := c.String("cc"); cc != "" {
			lower := osexec.CommandContext(ctx, cc, out)
			lower.Stdout = os.Stdout
			lower.Stderr = os.Stderr

			err = lower.Run()
			if err != nil {
				return errors.Wrap(err, "%v %v", cc, out)
			}
		}
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		err = compiler.RunFile(ctx, a, c.Int("tape"), os.Stdin, os.Stdout)
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		p, err := compiler.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		for i := 0; i < p.Len(); i++ {
			t := p.Code[i]

			if j := p.Match(i); j >= 0 {
				fmt.Printf("%4d  %v  %d:%d  match %d\n", i, t.Kind, t.Pos.Line, t.Pos.Col, j)
			} else {
				fmt.Printf("%4d  %v  %d:%d\n", i, t.Kind, t.Pos.Line, t.Pos.Col)
			}
		}
	}

	return nil
}
