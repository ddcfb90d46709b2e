package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/arthur-debert/prown/cmd/prown"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/charmbracelet/lipgloss"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func main() {
	rootCmd := prown.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// A command that ran and failed already printed its own output.
		var exitErr *prown.ExitCodeError
		if stderrors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:")+" "+errors.UserMessage(err))
		os.Exit(1)
	}
}
