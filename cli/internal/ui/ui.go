// Package ui collects the CLI's terminal output helpers.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

var (
	PrimaryColor   = lipgloss.Color("#FF8800")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// PrintHeader prints the bordered command banner.
func PrintHeader(title, subtitle string) {
	header := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(TitleStyle.Render(title) + "  " + SecondaryStyle.Render(subtitle))
	fmt.Println(header)
	fmt.Println()
}

func PrintSuccess(format string, args ...any) {
	fmt.Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

func PrintWarning(format string, args ...any) {
	fmt.Println(WarningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

func PrintInfo(format string, args ...any) {
	fmt.Println(SecondaryStyle.Render(fmt.Sprintf(format, args...)))
}

// Spinner starts a pterm spinner; the returned stop function reports
// success or failure with the final message.
func Spinner(text string) func(ok bool, result string) {
	sp, err := pterm.DefaultSpinner.Start(text)
	if err != nil {
		return func(ok bool, result string) {
			if ok {
				PrintSuccess("%s", result)
			} else {
				PrintError("%s", result)
			}
		}
	}
	return func(ok bool, result string) {
		if ok {
			sp.Success(result)
		} else {
			sp.Fail(result)
		}
	}
}

// Table renders rows with a header using pterm.
func Table(header []string, rows [][]string) {
	data := pterm.TableData{header}
	data = append(data, rows...)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// Markdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot initialize.
func Markdown(text string) string {
	out, err := glamour.Render(text, "dark")
	if err != nil {
		return text
	}
	return out
}
