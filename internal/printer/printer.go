package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"time"
)

// killWaitDelay bounds how long Print waits for output pipes after lp is killed.
const killWaitDelay = time.Second

// Printer submits documents to the CUPS spooler.
type Printer struct {
	destination string
	command     string
}

// New returns a printer for destination. command defaults to lp.
func New(destination, command string) *Printer {
	if command == "" {
		command = "lp"
	}
	return &Printer{destination: destination, command: command}
}

// Print runs "<command> -d <destination> <path>". The spooler owns the job once
// submitted, so the exit status is only logged. Failing to start the command or
// having it killed by ctx is an error: nothing reached the spooler.
func (p *Printer) Print(ctx context.Context, path string) error {
	args := []string{path}
	if p.destination != "" {
		args = append([]string{"-d", p.destination}, args...)
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = killWaitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted for %s: %w", p.command, path, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Printf("%s exited with %d for %s: %s", p.command, exitErr.ExitCode(), path, bytes.TrimSpace(out.Bytes()))
			return nil
		}
		return fmt.Errorf("failed to submit %s to %s: %w", path, p.command, err)
	}

	log.Printf("submitted %s to %s: %s", path, p.destinationName(), bytes.TrimSpace(out.Bytes()))
	return nil
}

func (p *Printer) destinationName() string {
	if p.destination == "" {
		return "default printer"
	}
	return p.destination
}
