package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const killWait = 5 * time.Second

type child struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func startChild(cmd *exec.Cmd) (*child, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	c := &child{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go func() {
		c.err = cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

func (c *child) Pid() int {
	return c.cmd.Process.Pid
}

func (c *child) Done() <-chan struct{} {
	return c.done
}

// Kill stops the process and waits for it to be reaped.
func (c *child) Kill() error {
	select {
	case <-c.done:
		return nil
	default:
	}

	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill process %d: %w", c.Pid(), err)
	}

	select {
	case <-c.done:
		return nil
	case <-time.After(killWait):
		return fmt.Errorf("process %d did not exit after kill", c.Pid())
	}
}

// ExitErr is only meaningful after Done is closed.
func (c *child) ExitErr() error {
	return c.err
}
