// Package externalcmd allows to launch external commands.
package externalcmd

import (
	"strings"
)

// Environment is a Cmd environment.
type Environment map[string]string

// Cmd is an external command. It runs once and reports its exit code
// through onExit.
type Cmd struct {
	pool   *Pool
	cmdstr string
	env    Environment
	onExit func(int)

	terminate chan struct{}
}

// NewCmd allocates a Cmd.
func NewCmd(
	pool *Pool,
	cmdstr string,
	env Environment,
	onExit func(int),
) *Cmd {
	// replace variables on every platform, in order to allow using the
	// same command lines on all of them.
	for key, val := range env {
		cmdstr = strings.ReplaceAll(cmdstr, "$"+key, val)
	}

	e := &Cmd{
		pool:      pool,
		cmdstr:    cmdstr,
		env:       env,
		onExit:    onExit,
		terminate: make(chan struct{}),
	}

	pool.wg.Add(1)

	go e.run()

	return e
}

// Close closes the command. It doesn't wait for the command to exit.
func (e *Cmd) Close() {
	close(e.terminate)
}

func (e *Cmd) run() {
	defer e.pool.wg.Done()

	code, ok := e.runOSSpecific()
	if ok {
		e.onExit(code)
	}
}
