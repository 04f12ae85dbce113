package db

import (
	"fmt"
	"strings"
)

// FormatConnectionError formats a preflight connection error with actionable guidance
func FormatConnectionError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "connection refused") {
		return fmt.Sprintf(
			"Connection refused: PostgreSQL is not accepting connections.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the host and port in the connection URL\n"+
				"  2. Check if PostgreSQL is listening on the expected port\n"+
				"  3. Verify firewall settings allow the connection\n"+
				"\nOriginal error: %s", errMsg)
	}

	if strings.Contains(errMsg, "password authentication failed") || strings.Contains(errMsg, "authentication failed") {
		return fmt.Sprintf(
			"Authentication failed: Invalid username or password.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the user and password in the connection URL\n"+
				"  2. Percent-encode special characters in the password (@ as %%40)\n"+
				"  3. Check password_command is configured correctly in config.yaml\n"+
				"\nOriginal error: %s", errMsg)
	}

	if strings.Contains(errMsg, "database") && strings.Contains(errMsg, "does not exist") {
		return fmt.Sprintf(
			"Database does not exist.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the database name in the connection URL\n"+
				"  2. Create the database: createdb <database_name>\n"+
				"\nOriginal error: %s", errMsg)
	}

	if strings.Contains(errMsg, "no such host") || strings.Contains(errMsg, "unknown host") {
		return fmt.Sprintf(
			"Host not found: Cannot resolve hostname.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the hostname in the connection URL\n"+
				"  2. Check DNS resolution: ping <hostname>\n"+
				"\nOriginal error: %s", errMsg)
	}

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") {
		return fmt.Sprintf(
			"Connection timeout: Database did not respond in time.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Check network connectivity to the database server\n"+
				"  2. Check for network firewall rules blocking the connection\n"+
				"\nOriginal error: %s", errMsg)
	}

	if strings.Contains(errMsg, "SSL") || strings.Contains(errMsg, "TLS") {
		return fmt.Sprintf(
			"SSL/TLS error: Secure connection failed.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the server accepts SSL connections\n"+
				"  2. Use --sslmode prefer if the server does not support SSL\n"+
				"\nOriginal error: %s", errMsg)
	}

	return fmt.Sprintf(
		"Database connection error:\n\n"+
			"%s\n\n"+
			"Run with --debug flag for detailed logs.", errMsg)
}

// FormatToolNotFound explains how to install the restore client.
func FormatToolNotFound(client string) string {
	return fmt.Sprintf(
		"Error: %s not found. Make sure PostgreSQL client tools are installed.\n\n"+
			"Installation:\n"+
			"  - macOS:   brew install libpq\n"+
			"  - Debian:  apt-get install postgresql-client\n"+
			"  - Fedora:  dnf install postgresql\n"+
			"\nOr point --client or --tool-dir at an existing installation.", client)
}
