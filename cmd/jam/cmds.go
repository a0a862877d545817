// cmds.go -- commands abstraction

package main

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// errUsage marks an argument/flag error (exit code 1), as distinct from
// the runtime errors a command's underlying operation can return.
var errUsage = errors.New("usage error")

// exit codes reported to the shell.
const (
	exitOK = iota
	exitUsage
	exitIO
	exitIndexInconsistent
	exitInternal
)

type command interface {
	run(args []string, opt *Option) error
}

var cmds = struct {
	sync.Mutex
	m map[string]command
}{
	m: make(map[string]command),
}

func registerCommand(nm string, cmd command) {
	cmds.Lock()
	if _, ok := cmds.m[nm]; ok {
		panic(fmt.Sprintf("%s already registered", nm))
	}
	cmds.m[nm] = cmd
	cmds.Unlock()
}

func runCommand(args []string, o *Option) error {
	nm := args[0]

	cmds.Lock()
	defer cmds.Unlock()
	cmd, ok := cmds.m[nm]
	if !ok {
		return fmt.Errorf("unknown command %s", nm)
	}

	return cmd.run(args, o)
}

// Option carries the global flags shared by every subcommand.
type Option struct {
	verbose bool
	silent  bool
	force   bool
	threads int

	log *zap.SugaredLogger
}

// Logger returns the process-wide structured logger, built once from
// the -V/--verbose and -s/--silent flags: silent suppresses everything
// but warnings/errors, verbose enables debug-level worker/writer/query
// diagnostics, and the default is info level.
func (o *Option) Logger() *zap.SugaredLogger {
	if o.log != nil {
		return o.log
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	switch {
	case o.silent:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case o.verbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	o.log = l.Sugar()
	return o.log
}

func (o *Option) Printf(s string, v ...interface{}) {
	if !o.silent {
		fmt.Printf(s, v...)
	}
}
