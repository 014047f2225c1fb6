package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	errEmptyPassword    = errors.New("password cannot be empty")
	errPasswordMismatch = errors.New("passwords do not match")
)

// passwordReader prompts for secrets, hiding input when stdin is a terminal
type passwordReader struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	masked bool
}

func newPasswordReader(insecureUnmask bool) *passwordReader {
	fd := int(os.Stdin.Fd())
	return &passwordReader{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stderr,
		fd:     fd,
		masked: !insecureUnmask && term.IsTerminal(fd),
	}
}

func (p *passwordReader) read(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if p.masked {
		password, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		return string(password), err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readConfirmed asks twice and returns the password when both entries match
func (p *passwordReader) readConfirmed() (string, error) {
	password, err := p.read("Enter password:   ")
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	if password == "" {
		return "", errEmptyPassword
	}

	confirm, err := p.read("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("error reading password confirmation: %w", err)
	}
	if password != confirm {
		return "", errPasswordMismatch
	}
	return password, nil
}
