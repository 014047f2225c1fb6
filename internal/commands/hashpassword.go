package commands

import (
	"flag"
	"fmt"
	"os"

	"waste-wizard-backend/internal/session"
)

// HashPassword handles the hash-password subcommand: it prints a bcrypt hash
// suitable for the users.password column.
func HashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: server hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Prints a bcrypt hash of the entered password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if *insecureUnmask {
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
	}

	password, err := newPasswordReader(*insecureUnmask).readConfirmed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hash, err := session.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
