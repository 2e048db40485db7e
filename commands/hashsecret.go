package commands

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"rya_attendance_backend/middleware"

	"golang.org/x/term"
)

// HashSecret handles the hash-secret subcommand
func HashSecret(args []string) {
	fs := flag.NewFlagSet("hash-secret", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rya-attendance hash-secret\n\n")
		fmt.Fprintf(os.Stderr, "Reads the admin secret and prints a bcrypt hash for ADMIN_SECRET_HASH.\n")
		fmt.Fprintf(os.Stderr, "The secret is read from stdin when it is not a terminal.\n")
	}
	fs.Parse(args)

	secret, err := readSecret(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading secret: %v\n", err)
		os.Exit(1)
	}
	if secret == "" {
		fmt.Fprintf(os.Stderr, "Secret cannot be empty\n")
		os.Exit(1)
	}

	hash, err := middleware.HashSecret(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ADMIN_SECRET_HASH=%s\n", hash)
}

func readSecret(in *os.File) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Enter admin secret:   ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Confirm admin secret: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(secret) != string(confirm) {
		return "", fmt.Errorf("secrets do not match")
	}
	return string(secret), nil
}
